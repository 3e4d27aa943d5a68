package rewrite

import (
	"regexp"

	"ArticleNormalizer/internal/policy"
)

// NewSpacingChain builds the targeted spacing-repair chain. Each vocabulary
// label gets a pair of regexes: one for the plain "Label:text" collision and
// one for the "<strong>Label:</strong>text" collision. General prose that
// merely runs together is never split; only known label strings are touched.
func NewSpacingChain(pol policy.Policy) *Chain {
	type labelExprs struct {
		plain   *regexp.Regexp
		wrapped *regexp.Regexp
	}

	exprs := make([]labelExprs, 0, len(pol.SectionLabels))
	for _, label := range pol.SectionLabels {
		quoted := regexp.QuoteMeta(label)
		exprs = append(exprs, labelExprs{
			// Next char must be visible and not a tag open, so a break
			// inserted once is never inserted again.
			plain:   regexp.MustCompile(`(` + quoted + `:)([^\s<])`),
			wrapped: regexp.MustCompile(`(<strong>` + quoted + `:</strong>)([^\s<])`),
		})
	}

	rule := Rule{Name: "label_spacing", Apply: func(content string) (string, int) {
		count := 0
		for _, e := range exprs {
			if n := len(e.wrapped.FindAllString(content, -1)); n > 0 {
				content = e.wrapped.ReplaceAllString(content, "$1<br>$2")
				count += n
			}
			if n := len(e.plain.FindAllString(content, -1)); n > 0 {
				content = e.plain.ReplaceAllString(content, "$1<br>$2")
				count += n
			}
		}
		return content, count
	}}

	return &Chain{rules: []Rule{rule}}
}
