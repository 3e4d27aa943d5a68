package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"ArticleNormalizer/internal/policy"
)

// Rule fixes one class of markup defect. Apply is total: any string in, a
// string out, plus the number of changes made. A rule that cannot find its
// pattern returns the input unchanged with a zero count.
type Rule struct {
	Name  string
	Apply func(content string) (string, int)
}

// Chain runs rules in a fixed order, each consuming the previous rule's
// output. Order matters: list conversion must precede paragraph cleanup,
// emphasis must precede heading promotion.
type Chain struct {
	rules []Rule
}

// NewChain builds the full repair chain for stored article bodies. The
// chain assumes a mix of already-valid HTML and stray markdown fragments
// and must not damage the valid parts. Running it twice yields the same
// output as running it once.
func NewChain(pol policy.Policy) *Chain {
	return &Chain{rules: []Rule{
		linkRule(),
		breakCollapseRule(),
		emptyParagraphRule(),
		listConversionRule(),
		keyTermEmphasisRule(pol),
		headingPromotionRule(pol),
		whitespaceCleanupRule(),
	}}
}

// Apply runs the chain and reports per-rule change counts.
func (c *Chain) Apply(content string) (string, map[string]int) {
	counts := make(map[string]int, len(c.rules))
	for _, rule := range c.rules {
		var n int
		content, n = rule.Apply(content)
		counts[rule.Name] = n
	}
	return content, counts
}

// Rules returns the chain's rule names in execution order.
func (c *Chain) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}

var (
	mdLinkExpr      = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	brRunExpr       = regexp.MustCompile(`(?i)(?:<br\s*/?>\s*){2,}`)
	emptyParaExpr   = regexp.MustCompile(`(?i)<p>\s*</p>`)
	bulletItemExpr  = regexp.MustCompile(`^\s*[-*]\s+(.+)$`)
	orderedItemExpr = regexp.MustCompile(`^\s*\d+\.\s+(.+)$`)
	tripleNLExpr    = regexp.MustCompile(`\n{3,}`)
	headParaExpr    = regexp.MustCompile(`(?i)(</h[2-4]>)(<p>)`)
	paraHeadExpr    = regexp.MustCompile(`(?i)(</p>)(<h[2-4]>)`)
	paraOpenWSExpr  = regexp.MustCompile(`(?i)(<p>)\s+`)
	paraCloseWSExpr = regexp.MustCompile(`(?i)\s+(</p>)`)

	boldLeadBrExpr = regexp.MustCompile(`<strong>([A-Z][^<>:]*):</strong>\s*<br\s*/?>`)
	boldLeadNLExpr = regexp.MustCompile(`<strong>([A-Z][^<>:]*):</strong>\n`)
)

// linkRule converts [text](url) into safe external anchors. When the link
// text equals its url, display only the bare url once.
func linkRule() Rule {
	return Rule{Name: "markdown_links", Apply: func(content string) (string, int) {
		count := 0
		out := mdLinkExpr.ReplaceAllStringFunc(content, func(match string) string {
			m := mdLinkExpr.FindStringSubmatch(match)
			text := strings.TrimSpace(m[1])
			url := strings.TrimSpace(m[2])
			display := text
			if text == url {
				display = url
			}
			count++
			return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">%s</a>`, url, display)
		})
		return out, count
	}}
}

// breakCollapseRule turns 2-or-more consecutive breaks into a paragraph
// boundary. A single <br> denotes a legitimate intra-paragraph line break
// and is left alone.
func breakCollapseRule() Rule {
	return Rule{Name: "collapse_breaks", Apply: func(content string) (string, int) {
		count := len(brRunExpr.FindAllString(content, -1))
		if count == 0 {
			return content, 0
		}
		return brRunExpr.ReplaceAllString(content, "</p><p>"), count
	}}
}

// emptyParagraphRule deletes zero-content paragraphs outright.
func emptyParagraphRule() Rule {
	return Rule{Name: "empty_paragraphs", Apply: func(content string) (string, int) {
		count := len(emptyParaExpr.FindAllString(content, -1))
		if count == 0 {
			return content, 0
		}
		return emptyParaExpr.ReplaceAllString(content, ""), count
	}}
}

type listState int

const (
	noList listState = iota
	inUL
	inOL
)

// listConversionRule wraps contiguous runs of markdown bullet or numbered
// lines in a single <ul> or <ol>. The two list kinds are tracked separately
// so adjacent runs never merge; a different-kind line closes the previous
// list before opening its own.
func listConversionRule() Rule {
	return Rule{Name: "markdown_lists", Apply: func(content string) (string, int) {
		lines := strings.Split(content, "\n")
		out := make([]string, 0, len(lines))
		state := noList
		count := 0

		closeList := func() {
			switch state {
			case inUL:
				out = append(out, "</ul>")
			case inOL:
				out = append(out, "</ol>")
			}
			state = noList
		}

		for _, line := range lines {
			if m := bulletItemExpr.FindStringSubmatch(line); m != nil {
				if state == inOL {
					closeList()
				}
				if state != inUL {
					out = append(out, "<ul>")
					state = inUL
				}
				out = append(out, "<li>"+strings.TrimSpace(m[1])+"</li>")
				count++
				continue
			}
			if m := orderedItemExpr.FindStringSubmatch(line); m != nil {
				if state == inUL {
					closeList()
				}
				if state != inOL {
					out = append(out, "<ol>")
					state = inOL
				}
				out = append(out, "<li>"+strings.TrimSpace(m[1])+"</li>")
				count++
				continue
			}
			closeList()
			out = append(out, line)
		}
		closeList()

		if count == 0 {
			return content, 0
		}
		return strings.Join(out, "\n"), count
	}}
}

// keyTermEmphasisRule wraps known section labels in <strong>. A label that
// already appears wrapped anywhere is skipped wholesale; the lookup is what
// keeps repeated runs from nesting emphasis.
func keyTermEmphasisRule(pol policy.Policy) Rule {
	return Rule{Name: "key_term_emphasis", Apply: func(content string) (string, int) {
		count := 0
		for _, label := range pol.SectionLabels {
			term := label + ":"
			if strings.Contains(content, "<strong>"+term) ||
				strings.Contains(content, "<h2>"+label) ||
				strings.Contains(content, "<h3>"+label) {
				continue
			}
			n := strings.Count(content, term)
			if n == 0 {
				continue
			}
			content = strings.ReplaceAll(content, term, "<strong>"+term+"</strong>")
			count += n
		}
		return content, count
	}}
}

// headingPromotionRule promotes disguised headings. A vocabulary label
// standing alone on its own line becomes an <h2>; a short, capitalized
// <strong>Label:</strong> lead-in followed by a break becomes an <h3> with
// the break consumed.
func headingPromotionRule(pol policy.Policy) Rule {
	return Rule{Name: "heading_promotion", Apply: func(content string) (string, int) {
		count := 0

		lines := strings.Split(content, "\n")
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			for _, label := range pol.SectionLabels {
				if trimmed == label || trimmed == label+":" {
					lines[i] = "<h2>" + label + "</h2>"
					count++
					break
				}
			}
		}
		content = strings.Join(lines, "\n")

		promote := func(expr *regexp.Regexp, keepNewline bool) {
			content = expr.ReplaceAllStringFunc(content, func(match string) string {
				m := expr.FindStringSubmatch(match)
				label := m[1]
				if len(label) >= pol.HeadingPromotionMaxLen {
					return match
				}
				count++
				if keepNewline {
					return "<h3>" + label + "</h3>\n"
				}
				return "<h3>" + label + "</h3>"
			})
		}
		promote(boldLeadBrExpr, false)
		promote(boldLeadNLExpr, true)

		return content, count
	}}
}

// whitespaceCleanupRule normalizes the stored markup's readability: at most
// one blank line in a row, a newline between adjacent block tags, and no
// padding just inside paragraph tags.
func whitespaceCleanupRule() Rule {
	return Rule{Name: "whitespace_cleanup", Apply: func(content string) (string, int) {
		count := 0

		replace := func(expr *regexp.Regexp, repl string) {
			n := len(expr.FindAllString(content, -1))
			if n == 0 {
				return
			}
			content = expr.ReplaceAllString(content, repl)
			count += n
		}

		replace(tripleNLExpr, "\n\n")
		if n := strings.Count(content, "</p><p>"); n > 0 {
			content = strings.ReplaceAll(content, "</p><p>", "</p>\n<p>")
			count += n
		}
		replace(headParaExpr, "$1\n$2")
		replace(paraHeadExpr, "$1\n$2")
		replace(paraOpenWSExpr, "$1")
		replace(paraCloseWSExpr, "$1")

		return content, count
	}}
}
