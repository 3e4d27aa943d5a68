package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleNormalizer/internal/policy"
)

func TestSpacingChainFixesLabelCollisions(t *testing.T) {
	t.Parallel()

	chain := NewSpacingChain(policy.Default())

	t.Run("plain_label_collision", func(t *testing.T) {
		out, counts := chain.Apply("What it is:Weight loss results.")
		assert.Equal(t, "What it is:<br>Weight loss results.", out)
		assert.Equal(t, 1, counts["label_spacing"])
	})

	t.Run("wrapped_label_collision", func(t *testing.T) {
		out, _ := chain.Apply("<strong>Dosage:</strong>500mcg daily.")
		assert.Equal(t, "<strong>Dosage:</strong><br>500mcg daily.", out)
	})

	t.Run("already_spaced_untouched", func(t *testing.T) {
		in := "What it is: Weight loss results."
		out, counts := chain.Apply(in)
		assert.Equal(t, in, out)
		assert.Zero(t, counts["label_spacing"])
	})

	t.Run("idempotent", func(t *testing.T) {
		once, _ := chain.Apply("What it is:Weight loss results.")
		twice, counts := chain.Apply(once)
		require.Equal(t, once, twice)
		assert.Zero(t, counts["label_spacing"])
	})

	t.Run("unknown_labels_never_split", func(t *testing.T) {
		in := "Random phrase:Another sentence runs together."
		out, counts := chain.Apply(in)
		assert.Equal(t, in, out)
		assert.Zero(t, counts["label_spacing"])
	})
}

// The general repair chain must never insert breaks based on sentence
// heuristics; run-together prose is only the spacing chain's business, and
// only for known labels.
func TestGeneralChainDoesNotSplitRunTogetherText(t *testing.T) {
	t.Parallel()

	chain := NewChain(policy.Default())

	out, _ := chain.Apply("<p>What it is:Weight loss results.</p>")
	assert.NotContains(t, out, "<br>")
	assert.Contains(t, out, ":</strong>Weight loss results.")
}
