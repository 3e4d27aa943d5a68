package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleNormalizer/internal/domain"
	"ArticleNormalizer/internal/pipeline"
	"ArticleNormalizer/internal/policy"
	"ArticleNormalizer/internal/ports"
)

const (
	cleanContent = "<p>This is a perfectly well formatted paragraph of content.</p>"
	messyContent = "- Alpha\n- Beta\n- Gamma\n\nSome intro text that makes this long enough to process."
)

type fakeStore struct {
	articles    []domain.Article
	updated     map[string]string
	updateCalls int
	failUpdate  map[string]error
}

var _ ports.ContentStore = (*fakeStore)(nil)

func newFakeStore(articles ...domain.Article) *fakeStore {
	return &fakeStore{
		articles:   articles,
		updated:    map[string]string{},
		failUpdate: map[string]error{},
	}
}

func (s *fakeStore) ListAll(context.Context) ([]domain.Article, error) {
	return s.articles, nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (domain.Article, error) {
	for _, a := range s.articles {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Article{}, ports.ErrNotFound
}

func (s *fakeStore) UpdateContent(_ context.Context, id, content string, _ time.Time) error {
	s.updateCalls++
	if err := s.failUpdate[id]; err != nil {
		return err
	}
	s.updated[id] = content
	return nil
}

func newRunner(store ports.ContentStore) *Runner {
	pol := policy.Default()
	return NewRunner(Deps{
		Store:        store,
		Orchestrator: pipeline.New(pol, nil),
		Policy:       pol,
	})
}

func TestDryRunNeverWrites(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		domain.Article{ID: "a1", Title: "Messy", Content: messyContent},
		domain.Article{ID: "a2", Title: "Clean", Content: cleanContent},
	)
	runner := newRunner(store)

	summary, err := runner.FixFormatting(context.Background(), domain.ModeDryRun, "")
	require.NoError(t, err)

	assert.Equal(t, 0, store.updateCalls)
	assert.Equal(t, domain.ModeDryRun, summary.Mode)
	assert.Equal(t, 2, summary.TotalProcessed)
	assert.Equal(t, 1, summary.TotalFixed)
	assert.True(t, summary.Success)
}

func TestApplySkipsUnchangedArticles(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		domain.Article{ID: "a1", Title: "Clean", Content: cleanContent},
	)
	runner := newRunner(store)

	summary, err := runner.FixFormatting(context.Background(), domain.ModeApply, "")
	require.NoError(t, err)

	// Unchanged content must cause zero write calls, not a no-op write.
	assert.Equal(t, 0, store.updateCalls)
	assert.Equal(t, 0, summary.TotalFixed)
	assert.Equal(t, 1, summary.TotalProcessed)
}

func TestApplyPersistsFixedContent(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		domain.Article{ID: "a1", Title: "Messy", Content: messyContent},
	)
	runner := newRunner(store)

	summary, err := runner.FixFormatting(context.Background(), domain.ModeApply, "")
	require.NoError(t, err)

	require.Equal(t, 1, store.updateCalls)
	assert.Equal(t, 1, summary.TotalFixed)
	stored := store.updated["a1"]
	assert.Contains(t, stored, "<ul>")
	assert.Contains(t, stored, "<li>Alpha</li>")
	assert.NotEqual(t, messyContent, stored)
}

func TestShortContentSkipped(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		domain.Article{ID: "a1", Title: "Stub", Content: "too short"},
		domain.Article{ID: "a2", Title: "Blank", Content: "   "},
	)
	runner := newRunner(store)

	summary, err := runner.FixFormatting(context.Background(), domain.ModeApply, "")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalSkipped)
	assert.Equal(t, 0, summary.TotalProcessed)
	assert.Equal(t, 0, store.updateCalls)
	assert.Empty(t, summary.Results)
}

func TestWriteFailureIsolatedPerArticle(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		domain.Article{ID: "a1", Title: "First", Content: messyContent},
		domain.Article{ID: "a2", Title: "Second", Content: messyContent},
	)
	store.failUpdate["a1"] = errors.New("connection reset")
	runner := newRunner(store)

	summary, err := runner.FixFormatting(context.Background(), domain.ModeApply, "")
	require.NoError(t, err)

	assert.Equal(t, 2, store.updateCalls)
	assert.Equal(t, 1, summary.TotalErrored)
	assert.Equal(t, 1, summary.TotalFixed)
	assert.NotEmpty(t, resultError(t, summary, "a1"))
	assert.Contains(t, store.updated, "a2")
}

// resultError finds the run entry for an id and returns its error string.
func resultError(t *testing.T, s domain.RunSummary, id string) string {
	t.Helper()
	for _, r := range s.Results {
		if r.ID == id {
			return r.Error
		}
	}
	t.Fatalf("no result entry for %s", id)
	return ""
}

func TestTargetSingleArticle(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		domain.Article{ID: "a1", Title: "Messy", Content: messyContent},
		domain.Article{ID: "a2", Title: "Also Messy", Content: messyContent},
	)
	runner := newRunner(store)

	summary, err := runner.FixFormatting(context.Background(), domain.ModeApply, "a2")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalProcessed)
	assert.Equal(t, 1, store.updateCalls)
	assert.Contains(t, store.updated, "a2")
	assert.NotContains(t, store.updated, "a1")
}

func TestTargetUnknownArticle(t *testing.T) {
	t.Parallel()

	runner := newRunner(newFakeStore())

	_, err := runner.FixFormatting(context.Background(), domain.ModeDryRun, "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestUnknownModeFallsBackToDryRun(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		domain.Article{ID: "a1", Title: "Messy", Content: messyContent},
	)
	runner := newRunner(store)

	summary, err := runner.FixFormatting(context.Background(), domain.RunMode("yolo"), "")
	require.NoError(t, err)

	assert.Equal(t, domain.ModeDryRun, summary.Mode)
	assert.Equal(t, 0, store.updateCalls)
}

func TestFixSpacingOnlyTouchesLabels(t *testing.T) {
	t.Parallel()

	runTogether := "<p>Some filler text to clear the minimum length bar. Dosage:250mcg daily works.</p>"
	store := newFakeStore(
		domain.Article{ID: "a1", Title: "Spacing", Content: runTogether},
	)
	runner := newRunner(store)

	summary, err := runner.FixSpacing(context.Background(), domain.ModeApply, "")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalFixed)
	assert.Contains(t, store.updated["a1"], "Dosage:<br>250mcg")
	// The targeted chain must not run the general rules.
	assert.NotContains(t, store.updated["a1"], "<strong>")
}

func TestAnalyzeNeverWrites(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		domain.Article{ID: "a1", Title: "Messy", Content: messyContent},
		domain.Article{ID: "a2", Title: "Empty", Content: ""},
	)
	runner := newRunner(store)

	report, err := runner.Analyze(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 0, store.updateCalls)
	assert.Equal(t, 2, report.TotalArticles)
	assert.Equal(t, 2, report.ArticlesWithIssues)
	assert.Equal(t, 1, report.IssuesByKind[domain.IssueMissingContent])
}

func TestAggregateSortsByIssueCount(t *testing.T) {
	t.Parallel()

	issue := func(kind domain.IssueKind, sev domain.Severity) domain.Issue {
		return domain.Issue{Kind: kind, Severity: sev}
	}
	reports := []domain.IssueReport{
		{ArticleID: "low", IssueCount: 1, Issues: []domain.Issue{
			issue(domain.IssueExcessiveBrTags, domain.SeverityMedium),
		}},
		{ArticleID: "none", IssueCount: 0},
		{ArticleID: "high", IssueCount: 3, Issues: []domain.Issue{
			issue(domain.IssueMarkdownBullets, domain.SeverityHigh),
			issue(domain.IssueMarkdownBold, domain.SeverityHigh),
			issue(domain.IssueExcessiveBrTags, domain.SeverityMedium),
		}},
	}

	agg := Aggregate(reports)

	require.Len(t, agg.Articles, 2)
	assert.Equal(t, "high", agg.Articles[0].ArticleID)
	assert.Equal(t, "low", agg.Articles[1].ArticleID)
	assert.Equal(t, 3, agg.TotalArticles)
	assert.Equal(t, 2, agg.ArticlesWithIssues)
	assert.Equal(t, 4, agg.TotalIssues)
	assert.Equal(t, 2, agg.IssuesByKind[domain.IssueExcessiveBrTags])
	assert.Equal(t, 2, agg.IssuesBySeverity[domain.SeverityHigh])
}
