package batch

import (
	"fmt"
	"strings"

	"ArticleNormalizer/internal/domain"
)

// digestArticleLimit caps how many worst offenders a digest names.
const digestArticleLimit = 10

// BuildDigest renders an analysis report as a short operator message for
// the notification channel.
func BuildDigest(report domain.AnalysisReport) string {
	if report.ArticlesWithIssues == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Content analysis: %d of %d articles have formatting issues (%d total)\n",
		report.ArticlesWithIssues, report.TotalArticles, report.TotalIssues)

	for _, severity := range []domain.Severity{
		domain.SeverityCritical,
		domain.SeverityHigh,
		domain.SeverityMedium,
		domain.SeverityLow,
	} {
		if n := report.IssuesBySeverity[severity]; n > 0 {
			fmt.Fprintf(&b, "%s: %d\n", severity, n)
		}
	}

	b.WriteString("\nWorst offenders:\n")
	for i, article := range report.Articles {
		if i == digestArticleLimit {
			break
		}
		title := article.Title
		if title == "" {
			title = article.ArticleID
		}
		fmt.Fprintf(&b, "- %s (%d issues)\n", title, article.IssueCount)
	}

	return b.String()
}
