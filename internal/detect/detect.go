package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"ArticleNormalizer/internal/domain"
	"ArticleNormalizer/internal/policy"
)

const snippetMax = 100

var (
	bulletLineExpr   = regexp.MustCompile(`(?m)^\s*[-*]\s+.+$`)
	numberedLineExpr = regexp.MustCompile(`(?m)^\s*\d+\.\s+.+$`)
	boldExpr         = regexp.MustCompile(`\*\*[^*\n]+\*\*`)
	italicExpr       = regexp.MustCompile(`\*[^*\s][^*\n]*\*`)
	bTagExpr         = regexp.MustCompile(`(?i)<b[\s>]`)
	iTagExpr         = regexp.MustCompile(`(?i)<i[\s>]`)
	h1TagExpr        = regexp.MustCompile(`(?i)<h1[\s>]`)
	mdH2Expr         = regexp.MustCompile(`(?m)^##\s+.+$`)
	mdH3Expr         = regexp.MustCompile(`(?m)^###\s+.+$`)
	brTagExpr        = regexp.MustCompile(`(?i)<br\s*/?>`)
	brRunExpr        = regexp.MustCompile(`(?i)(?:<br\s*/?>\s*){2,}`)
	bulletParaExpr   = regexp.MustCompile(`(?i)<p>\s*[-•●]`)
	numberedParaExpr = regexp.MustCompile(`(?i)<p>\s*\d+[.)]`)
	emptyParaExpr    = regexp.MustCompile(`(?i)<p>\s*</p>`)
	emptyStrongExpr  = regexp.MustCompile(`(?i)<strong>\s*</strong>`)
	linkExpr         = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	blankLineExpr    = regexp.MustCompile(`\n\s*\n`)
	subHeadingExpr   = regexp.MustCompile(`(?i)<h[2-4][\s>]`)
	paragraphExpr    = regexp.MustCompile(`(?i)<p[\s>]`)
)

// blockPrefixes are the tags a well-formed block is allowed to open with.
var blockPrefixes = []string{"<p", "<h1", "<h2", "<h3", "<h4", "<h5", "<h6", "<ul", "<ol", "<li", "<div", "<blockquote"}

// Suite runs every registered detector against a content string. Detectors
// are stateless and order-independent; the suite only fixes their reporting
// order so reports are stable.
type Suite struct {
	pol       policy.Policy
	stripped  *bluemonday.Policy
	detectors []detector
}

type detector struct {
	name string
	scan func(s *Suite, content string) []domain.Issue
}

// NewSuite registers the full detector set for the given policy.
func NewSuite(pol policy.Policy) *Suite {
	s := &Suite{pol: pol, stripped: bluemonday.StrictPolicy()}
	s.detectors = []detector{
		{"bare_paragraphs", (*Suite).scanBareParagraphs},
		{"markdown_lists", (*Suite).scanMarkdownLists},
		{"lists_without_items", (*Suite).scanListsWithoutItems},
		{"emphasis", (*Suite).scanEmphasis},
		{"headings", (*Suite).scanHeadings},
		{"line_breaks", (*Suite).scanLineBreaks},
		{"disguised_lists", (*Suite).scanDisguisedLists},
		{"empty_tags", (*Suite).scanEmptyTags},
		{"links", (*Suite).scanLinks},
		{"structure", (*Suite).scanStructure},
	}
	return s
}

// Run executes all detectors. Empty or whitespace-only content produces a
// single critical MISSING_CONTENT issue and short-circuits everything else.
func (s *Suite) Run(content string) []domain.Issue {
	if strings.TrimSpace(content) == "" {
		return []domain.Issue{{
			Kind:        domain.IssueMissingContent,
			Severity:    domain.SeverityCritical,
			Description: "article has no body content",
			Suggestion:  "write or restore the article body",
		}}
	}

	var issues []domain.Issue
	for _, d := range s.detectors {
		issues = append(issues, d.scan(s, content)...)
	}
	return issues
}

func (s *Suite) scanBareParagraphs(content string) []domain.Issue {
	blocks := blankLineExpr.Split(content, -1)
	for _, block := range blocks {
		trimmed := strings.TrimSpace(block)
		if trimmed == "" {
			continue
		}
		if hasBlockPrefix(trimmed) {
			continue
		}
		// One representative instance is enough.
		return []domain.Issue{{
			Kind:        domain.IssueMissingParagraphTag,
			Severity:    domain.SeverityHigh,
			Description: "bare text block without a paragraph tag",
			Snippet:     snippet(trimmed),
			Suggestion:  "wrap body text in <p> tags",
		}}
	}
	return nil
}

func (s *Suite) scanMarkdownLists(content string) []domain.Issue {
	var issues []domain.Issue
	if m := bulletLineExpr.FindAllString(content, -1); len(m) > 0 {
		issues = append(issues, domain.Issue{
			Kind:        domain.IssueMarkdownBullets,
			Severity:    domain.SeverityHigh,
			Description: fmt.Sprintf("%d markdown bullet lines", len(m)),
			Snippet:     snippet(m[0]),
			Suggestion:  "convert bullet lines to <ul>/<li> markup",
		})
	}
	if m := numberedLineExpr.FindAllString(content, -1); len(m) > 0 {
		issues = append(issues, domain.Issue{
			Kind:        domain.IssuePlainTextNumberedList,
			Severity:    domain.SeverityHigh,
			Description: fmt.Sprintf("%d plain-text numbered lines", len(m)),
			Snippet:     snippet(m[0]),
			Suggestion:  "convert numbered lines to <ol>/<li> markup",
		})
	}
	return issues
}

func (s *Suite) scanListsWithoutItems(content string) []domain.Issue {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		// Malformed markup is tolerated, never rejected.
		return nil
	}

	var issues []domain.Issue
	doc.Find("ul").Each(func(_ int, sel *goquery.Selection) {
		if sel.Find("li").Length() == 0 {
			issues = append(issues, domain.Issue{
				Kind:        domain.IssueULWithoutLI,
				Severity:    domain.SeverityCritical,
				Description: "unordered list contains no list items",
				Snippet:     snippet(strings.TrimSpace(sel.Text())),
				Suggestion:  "wrap list entries in <li> or drop the <ul>",
			})
		}
	})
	doc.Find("ol").Each(func(_ int, sel *goquery.Selection) {
		if sel.Find("li").Length() == 0 {
			issues = append(issues, domain.Issue{
				Kind:        domain.IssueOLWithoutLI,
				Severity:    domain.SeverityCritical,
				Description: "ordered list contains no list items",
				Snippet:     snippet(strings.TrimSpace(sel.Text())),
				Suggestion:  "wrap list entries in <li> or drop the <ol>",
			})
		}
	})
	return issues
}

func (s *Suite) scanEmphasis(content string) []domain.Issue {
	var issues []domain.Issue
	if m := boldExpr.FindAllString(content, -1); len(m) > 0 {
		issues = append(issues, domain.Issue{
			Kind:        domain.IssueMarkdownBold,
			Severity:    domain.SeverityMedium,
			Description: fmt.Sprintf("%d markdown bold spans", len(m)),
			Snippet:     snippet(m[0]),
			Suggestion:  "replace **text** with <strong>text</strong>",
		})
	}
	if loc := bTagExpr.FindStringIndex(content); loc != nil {
		issues = append(issues, domain.Issue{
			Kind:        domain.IssueBTagInsteadOfStrong,
			Severity:    domain.SeverityLow,
			Description: "presentational <b> tag in body copy",
			Snippet:     snippet(content[loc[0]:]),
			Suggestion:  "use <strong> for emphasis",
		})
	}
	// RE2 has no lookarounds, so mask double-asterisk runs before looking
	// for single-asterisk italics.
	masked := boldExpr.ReplaceAllString(content, "")
	if m := italicExpr.FindAllString(masked, -1); len(m) > 0 {
		issues = append(issues, domain.Issue{
			Kind:        domain.IssueMarkdownItalic,
			Severity:    domain.SeverityLow,
			Description: fmt.Sprintf("%d markdown italic spans", len(m)),
			Snippet:     snippet(m[0]),
			Suggestion:  "replace *text* with <em>text</em>",
		})
	}
	if loc := iTagExpr.FindStringIndex(content); loc != nil {
		issues = append(issues, domain.Issue{
			Kind:        domain.IssueITagInsteadOfEm,
			Severity:    domain.SeverityLow,
			Description: "presentational <i> tag in body copy",
			Snippet:     snippet(content[loc[0]:]),
			Suggestion:  "use <em> for emphasis",
		})
	}
	return issues
}

func (s *Suite) scanHeadings(content string) []domain.Issue {
	var issues []domain.Issue
	if m := mdH2Expr.FindAllString(content, -1); len(m) > 0 {
		issues = append(issues, domain.Issue{
			Kind:        domain.IssueMarkdownH2,
			Severity:    domain.SeverityMedium,
			Description: fmt.Sprintf("%d markdown h2 lines", len(m)),
			Snippet:     snippet(m[0]),
			Suggestion:  "replace ## headings with <h2> tags",
		})
	}
	if m := mdH3Expr.FindAllString(content, -1); len(m) > 0 {
		issues = append(issues, domain.Issue{
			Kind:        domain.IssueMarkdownH3,
			Severity:    domain.SeverityMedium,
			Description: fmt.Sprintf("%d markdown h3 lines", len(m)),
			Snippet:     snippet(m[0]),
			Suggestion:  "replace ### headings with <h3> tags",
		})
	}
	if loc := h1TagExpr.FindStringIndex(content); loc != nil {
		issues = append(issues, domain.Issue{
			Kind:        domain.IssueH1InContent,
			Severity:    domain.SeverityMedium,
			Description: "<h1> inside body copy; h1 is reserved for the page title",
			Snippet:     snippet(content[loc[0]:]),
			Suggestion:  "demote in-body <h1> to <h2>",
		})
	}
	return issues
}

func (s *Suite) scanLineBreaks(content string) []domain.Issue {
	var issues []domain.Issue
	if m := brRunExpr.FindAllString(content, -1); len(m) > 0 {
		issues = append(issues, domain.Issue{
			Kind:        domain.IssueExcessiveBrTags,
			Severity:    domain.SeverityMedium,
			Description: fmt.Sprintf("%d runs of consecutive <br> tags", len(m)),
			Snippet:     snippet(m[0]),
			Suggestion:  "use paragraph boundaries instead of stacked breaks",
		})
	}
	if total := len(brTagExpr.FindAllString(content, -1)); total > s.pol.BrUsageThreshold {
		issues = append(issues, domain.Issue{
			Kind:        domain.IssueExcessiveBrUsage,
			Severity:    domain.SeverityMedium,
			Description: fmt.Sprintf("%d <br> tags in one article", total),
			Suggestion:  "restructure break-driven layout into paragraphs",
		})
	}
	return issues
}

func (s *Suite) scanDisguisedLists(content string) []domain.Issue {
	var issues []domain.Issue
	if m := bulletParaExpr.FindAllString(content, -1); len(m) >= s.pol.ListRunThreshold {
		issues = append(issues, domain.Issue{
			Kind:        domain.IssueParagraphsAsListItems,
			Severity:    domain.SeverityMedium,
			Description: fmt.Sprintf("%d paragraphs carrying bullet glyphs", len(m)),
			Snippet:     snippet(m[0]),
			Suggestion:  "convert glyph-prefixed paragraphs to a real list",
		})
	}
	if m := numberedParaExpr.FindAllString(content, -1); len(m) >= s.pol.ListRunThreshold {
		issues = append(issues, domain.Issue{
			Kind:        domain.IssueNumberedParagraphsAsList,
			Severity:    domain.SeverityMedium,
			Description: fmt.Sprintf("%d paragraphs carrying list numbering", len(m)),
			Snippet:     snippet(m[0]),
			Suggestion:  "convert numbered paragraphs to an ordered list",
		})
	}
	return issues
}

func (s *Suite) scanEmptyTags(content string) []domain.Issue {
	var issues []domain.Issue
	if m := emptyParaExpr.FindAllString(content, -1); len(m) > s.pol.EmptyParagraphThreshold {
		issues = append(issues, domain.Issue{
			Kind:        domain.IssueEmptyParagraphs,
			Severity:    domain.SeverityLow,
			Description: fmt.Sprintf("%d empty paragraphs", len(m)),
			Suggestion:  "delete empty <p></p> pairs",
		})
	}
	if loc := emptyStrongExpr.FindStringIndex(content); loc != nil {
		issues = append(issues, domain.Issue{
			Kind:        domain.IssueEmptyStrongTags,
			Severity:    domain.SeverityLow,
			Description: "empty <strong></strong> pair",
			Snippet:     snippet(content[loc[0]:]),
			Suggestion:  "delete empty emphasis tags",
		})
	}
	return issues
}

func (s *Suite) scanLinks(content string) []domain.Issue {
	m := linkExpr.FindAllString(content, -1)
	if len(m) == 0 {
		return nil
	}
	return []domain.Issue{{
		Kind:        domain.IssueMarkdownLinks,
		Severity:    domain.SeverityMedium,
		Description: fmt.Sprintf("%d markdown links", len(m)),
		Snippet:     snippet(m[0]),
		Suggestion:  "convert [text](url) to anchor tags",
	}}
}

func (s *Suite) scanStructure(content string) []domain.Issue {
	visible := len(strings.TrimSpace(s.stripped.Sanitize(content)))

	var issues []domain.Issue
	if visible > s.pol.HeadingTextThreshold && !subHeadingExpr.MatchString(content) {
		issues = append(issues, domain.Issue{
			Kind:        domain.IssueMissingHeadings,
			Severity:    domain.SeverityMedium,
			Description: fmt.Sprintf("%d visible characters without any h2-h4", visible),
			Suggestion:  "break long content up with section headings",
		})
	}
	if visible > s.pol.ParagraphTextThreshold && !paragraphExpr.MatchString(content) {
		issues = append(issues, domain.Issue{
			Kind:        domain.IssueNoParagraphStructure,
			Severity:    domain.SeverityHigh,
			Description: fmt.Sprintf("%d visible characters without any <p>", visible),
			Suggestion:  "wrap prose in paragraph tags",
		})
	}
	return issues
}

func hasBlockPrefix(block string) bool {
	lower := strings.ToLower(block)
	for _, prefix := range blockPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= snippetMax {
		return s
	}
	return string(r[:snippetMax])
}
