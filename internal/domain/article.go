package domain

import "time"

// Article is a core entity: one stored content document with its body markup.
type Article struct {
	ID        string
	Title     string
	Slug      string
	Content   string
	Author    string
	Category  string
	Status    string
	UpdatedAt time.Time
}

// Severity orders issues for triage. It is advisory only and never gates
// whether a rewrite rule runs.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank maps severities onto a comparable scale, critical highest.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// IssueKind is the closed enumeration of formatting defects the detectors
// know how to flag.
type IssueKind string

const (
	IssueMissingContent           IssueKind = "MISSING_CONTENT"
	IssueMissingParagraphTag      IssueKind = "MISSING_PARAGRAPH_TAG"
	IssueMarkdownBullets          IssueKind = "MARKDOWN_BULLETS"
	IssuePlainTextNumberedList    IssueKind = "PLAIN_TEXT_NUMBERED_LIST"
	IssueULWithoutLI              IssueKind = "UL_WITHOUT_LI"
	IssueOLWithoutLI              IssueKind = "OL_WITHOUT_LI"
	IssueMarkdownBold             IssueKind = "MARKDOWN_BOLD"
	IssueBTagInsteadOfStrong      IssueKind = "B_TAG_INSTEAD_OF_STRONG"
	IssueMarkdownH2               IssueKind = "MARKDOWN_H2"
	IssueMarkdownH3               IssueKind = "MARKDOWN_H3"
	IssueH1InContent              IssueKind = "H1_IN_CONTENT"
	IssueExcessiveBrTags          IssueKind = "EXCESSIVE_BR_TAGS"
	IssueExcessiveBrUsage         IssueKind = "EXCESSIVE_BR_USAGE"
	IssueParagraphsAsListItems    IssueKind = "PARAGRAPHS_AS_LIST_ITEMS"
	IssueNumberedParagraphsAsList IssueKind = "NUMBERED_PARAGRAPHS_AS_LIST"
	IssueEmptyParagraphs          IssueKind = "EMPTY_PARAGRAPHS"
	IssueEmptyStrongTags          IssueKind = "EMPTY_STRONG_TAGS"
	IssueMarkdownItalic           IssueKind = "MARKDOWN_ITALIC"
	IssueITagInsteadOfEm          IssueKind = "I_TAG_INSTEAD_OF_EM"
	IssueMarkdownLinks            IssueKind = "MARKDOWN_LINKS"
	IssueMissingHeadings          IssueKind = "MISSING_HEADINGS"
	IssueNoParagraphStructure     IssueKind = "NO_PARAGRAPH_STRUCTURE"
)

// Issue is an observation about content, never a mutation of it. Snippet is
// truncated diagnostic context, at most 100 characters.
type Issue struct {
	Kind        IssueKind `json:"type"`
	Severity    Severity  `json:"severity"`
	Description string    `json:"description"`
	Snippet     string    `json:"snippet"`
	Suggestion  string    `json:"suggestion"`
}

// IssueReport collects detector output for a single article.
type IssueReport struct {
	ArticleID  string  `json:"articleId"`
	Title      string  `json:"title"`
	Issues     []Issue `json:"issues"`
	IssueCount int     `json:"issueCount"`
}

// AnalysisReport aggregates per-article reports across a batch. Articles are
// sorted by IssueCount descending.
type AnalysisReport struct {
	TotalArticles      int               `json:"totalArticles"`
	ArticlesWithIssues int               `json:"articlesWithIssues"`
	TotalIssues        int               `json:"totalIssues"`
	IssuesByKind       map[IssueKind]int `json:"issuesByType"`
	IssuesBySeverity   map[Severity]int  `json:"issuesBySeverity"`
	Articles           []IssueReport     `json:"articles"`
}

// FixResult is the outcome of the rewrite chain on one article. Changed is
// structural string inequality, not semantic equivalence.
type FixResult struct {
	ArticleID       string         `json:"articleId"`
	OriginalContent string         `json:"originalContent"`
	FixedContent    string         `json:"fixedContent"`
	FixesByRule     map[string]int `json:"fixesByRule"`
	Changed         bool           `json:"changed"`
}

// RunMode selects whether a batch run persists its results.
type RunMode string

const (
	ModeDryRun RunMode = "dryRun"
	ModeApply  RunMode = "apply"
)

// RunResult is the per-article line item of a batch run.
type RunResult struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Slug           string `json:"slug"`
	Changed        bool   `json:"changed"`
	Preview        string `json:"preview,omitempty"`
	OriginalLength int    `json:"originalLength,omitempty"`
	FixedLength    int    `json:"fixedLength,omitempty"`
	Error          string `json:"error,omitempty"`
}

// RunSummary is returned by every batch operation, dry-run or apply.
type RunSummary struct {
	Success        bool           `json:"success"`
	Mode           RunMode        `json:"mode"`
	TotalProcessed int            `json:"totalProcessed"`
	TotalFixed     int            `json:"totalFixed"`
	TotalSkipped   int            `json:"totalSkipped"`
	TotalErrored   int            `json:"totalErrored"`
	FixesByRule    map[string]int `json:"fixesByRule,omitempty"`
	Results        []RunResult    `json:"results"`
}
