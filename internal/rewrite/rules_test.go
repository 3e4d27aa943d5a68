package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleNormalizer/internal/policy"
)

func TestLinkRule(t *testing.T) {
	t.Parallel()

	rule := linkRule()

	t.Run("text_and_url", func(t *testing.T) {
		out, n := rule.Apply("[Example](https://x.test)")
		assert.Equal(t, `<a href="https://x.test" target="_blank" rel="noopener noreferrer">Example</a>`, out)
		assert.Equal(t, 1, n)
	})

	t.Run("text_equals_url", func(t *testing.T) {
		out, _ := rule.Apply("[https://x.test](https://x.test)")
		assert.Equal(t, `<a href="https://x.test" target="_blank" rel="noopener noreferrer">https://x.test</a>`, out)
		assert.Equal(t, 1, strings.Count(out, "https://x.test</a>"))
	})

	t.Run("trims_text_and_url", func(t *testing.T) {
		out, _ := rule.Apply("[ Docs ]( https://x.test )")
		assert.Equal(t, `<a href="https://x.test" target="_blank" rel="noopener noreferrer">Docs</a>`, out)
	})

	t.Run("no_links", func(t *testing.T) {
		out, n := rule.Apply("<p>plain</p>")
		assert.Equal(t, "<p>plain</p>", out)
		assert.Zero(t, n)
	})
}

func TestBreakCollapseRule(t *testing.T) {
	t.Parallel()

	rule := breakCollapseRule()

	tests := map[string]struct {
		in   string
		want string
	}{
		"triple_break":      {"<br><br><br>", "</p><p>"},
		"double_break":      {"<br><br>", "</p><p>"},
		"single_break_kept": {"a<br>b", "a<br>b"},
		"self_closing":      {"<br/><br />", "</p><p>"},
		"spread_run":        {"a<br> <br>\n<br>b", "a</p><p>b"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			out, _ := rule.Apply(tc.in)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestEmptyParagraphRule(t *testing.T) {
	t.Parallel()

	rule := emptyParagraphRule()

	out, n := rule.Apply("<p>Hi</p><p></p><p>Bye</p>")
	assert.Equal(t, "<p>Hi</p><p>Bye</p>", out)
	assert.Equal(t, 1, n)

	out, _ = rule.Apply("<p>  \n </p>")
	assert.Equal(t, "", out)
}

func TestListConversionRule(t *testing.T) {
	t.Parallel()

	rule := listConversionRule()

	t.Run("bullet_run", func(t *testing.T) {
		out, n := rule.Apply("- A\n- B\n- C")
		flat := strings.ReplaceAll(out, "\n", "")
		assert.Equal(t, "<ul><li>A</li><li>B</li><li>C</li></ul>", flat)
		assert.Equal(t, 3, n)
		assert.Equal(t, 1, strings.Count(out, "<ul>"))
		assert.Equal(t, 1, strings.Count(out, "</ul>"))
	})

	t.Run("ordered_run", func(t *testing.T) {
		out, _ := rule.Apply("1. First\n2. Second")
		flat := strings.ReplaceAll(out, "\n", "")
		assert.Equal(t, "<ol><li>First</li><li>Second</li></ol>", flat)
	})

	t.Run("kinds_never_merge", func(t *testing.T) {
		out, _ := rule.Apply("- A\n1. B")
		flat := strings.ReplaceAll(out, "\n", "")
		assert.Equal(t, "<ul><li>A</li></ul><ol><li>B</li></ol>", flat)
	})

	t.Run("list_closed_by_plain_line", func(t *testing.T) {
		out, _ := rule.Apply("- A\nplain\n- B")
		flat := strings.ReplaceAll(out, "\n", "")
		assert.Equal(t, "<ul><li>A</li></ul>plain<ul><li>B</li></ul>", flat)
	})

	t.Run("asterisk_bullets", func(t *testing.T) {
		out, _ := rule.Apply("* A\n* B")
		flat := strings.ReplaceAll(out, "\n", "")
		assert.Equal(t, "<ul><li>A</li><li>B</li></ul>", flat)
	})

	t.Run("bold_line_is_not_a_bullet", func(t *testing.T) {
		out, n := rule.Apply("**Bold** statement")
		assert.Equal(t, "**Bold** statement", out)
		assert.Zero(t, n)
	})
}

func TestKeyTermEmphasisRule(t *testing.T) {
	t.Parallel()

	rule := keyTermEmphasisRule(policy.Default())

	out, n := rule.Apply("<p>Dosage: 500mcg daily</p>")
	assert.Equal(t, "<p><strong>Dosage:</strong> 500mcg daily</p>", out)
	assert.Equal(t, 1, n)

	// Already-wrapped labels are skipped wholesale.
	again, n2 := rule.Apply(out)
	assert.Equal(t, out, again)
	assert.Zero(t, n2)
}

func TestHeadingPromotionRule(t *testing.T) {
	t.Parallel()

	rule := headingPromotionRule(policy.Default())

	t.Run("standalone_label_to_h2", func(t *testing.T) {
		out, n := rule.Apply("<p>intro</p>\nDosage\n<p>rest</p>")
		assert.Contains(t, out, "<h2>Dosage</h2>")
		assert.Equal(t, 1, n)
	})

	t.Run("bold_lead_in_to_h3", func(t *testing.T) {
		out, _ := rule.Apply("<strong>Summary:</strong><br>The short version.")
		assert.Equal(t, "<h3>Summary</h3>The short version.", out)
	})

	t.Run("newline_terminator_kept", func(t *testing.T) {
		out, _ := rule.Apply("<strong>Summary:</strong>\nThe short version.")
		assert.Equal(t, "<h3>Summary</h3>\nThe short version.", out)
	})

	t.Run("long_lead_in_not_promoted", func(t *testing.T) {
		label := "A" + strings.Repeat("x", 69)
		in := "<strong>" + label + ":</strong><br>tail"
		out, n := rule.Apply(in)
		assert.Equal(t, in, out)
		assert.Zero(t, n)
	})

	t.Run("lowercase_lead_in_not_promoted", func(t *testing.T) {
		in := "<strong>summary:</strong><br>tail"
		out, _ := rule.Apply(in)
		assert.Equal(t, in, out)
	})
}

func TestWhitespaceCleanupRule(t *testing.T) {
	t.Parallel()

	rule := whitespaceCleanupRule()

	out, _ := rule.Apply("<p>a</p>\n\n\n\n<p>b</p>")
	assert.Equal(t, "<p>a</p>\n\n<p>b</p>", out)

	out, _ = rule.Apply("<p>a</p><p>b</p>")
	assert.Equal(t, "<p>a</p>\n<p>b</p>", out)

	out, _ = rule.Apply("</h2><p>x</p><h3>")
	assert.Equal(t, "</h2>\n<p>x</p>\n<h3>", out)

	out, _ = rule.Apply("<p>  padded  </p>")
	assert.Equal(t, "<p>padded</p>", out)
}

func TestChainRunsUnconditionally(t *testing.T) {
	t.Parallel()

	chain := NewChain(policy.Default())

	clean := "<p>This body is already perfectly formatted.</p>"
	out, counts := chain.Apply(clean)
	assert.Equal(t, clean, out)
	for name, n := range counts {
		assert.Zero(t, n, "rule %s should be a no-op", name)
	}
	require.Len(t, counts, len(chain.Rules()))
}

func TestChainIdempotence(t *testing.T) {
	t.Parallel()

	chain := NewChain(policy.Default())

	fixtures := map[string]string{
		"clean_html": "<p>Hello.</p>\n<h2>Part</h2>\n<p>World.</p>",
		"markdown_mix": "Intro paragraph without tags.\n\n" +
			"What it is: This peptide supports recovery.\n\n" +
			"- Alpha\n- Beta\n- Gamma\n\n" +
			"Read [docs](https://x.test) first.\n<br><br>\nDosage\n500mcg daily\n<p></p>",
		"label_lead_ins": "Dosage:\nTake 500mcg.\n\n<strong>Summary:</strong><br>Short version.",
		"broken_markup":  "<p>unclosed <ul></ul><br><br><br>**bold** *ital* [a](b",
		"numbered_lists": "1. one\n2. two\n3. three\n\ntext after",
		"br_heavy":       "<p>a<br>b<br><br>c<br><br><br>d</p>",
	}

	for name, fixture := range fixtures {
		t.Run(name, func(t *testing.T) {
			once, _ := chain.Apply(fixture)
			twice, counts := chain.Apply(once)
			require.Equal(t, once, twice, "fix(fix(x)) must equal fix(x)")
			for rule, n := range counts {
				assert.Zero(t, n, "rule %s re-fired on its own output", rule)
			}
		})
	}
}

func TestChainFullRepair(t *testing.T) {
	t.Parallel()

	chain := NewChain(policy.Default())

	in := "- A\n- B\n- C\n\nDosage\n\nSee [Example](https://x.test)<br><br>done<p></p>"
	out, counts := chain.Apply(in)

	assert.Contains(t, out, "<li>A</li>")
	assert.Contains(t, out, "<h2>Dosage</h2>")
	assert.Contains(t, out, `<a href="https://x.test" target="_blank" rel="noopener noreferrer">Example</a>`)
	assert.NotContains(t, out, "<br><br>")
	assert.NotContains(t, out, "<p></p>")

	assert.Equal(t, 3, counts["markdown_lists"])
	assert.Equal(t, 1, counts["markdown_links"])
	assert.Equal(t, 1, counts["collapse_breaks"])
	assert.Equal(t, 1, counts["empty_paragraphs"])
}
