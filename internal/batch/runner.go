package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"ArticleNormalizer/internal/domain"
	"ArticleNormalizer/internal/pipeline"
	"ArticleNormalizer/internal/policy"
	"ArticleNormalizer/internal/ports"
	"ArticleNormalizer/internal/rewrite"
)

// Runner iterates the content store, applies the orchestrator per article
// and aggregates the outcome. Dry-run is the default everywhere; apply mode
// is an explicit, affirmative opt-in because it bulk-writes user-facing
// content.
type Runner struct {
	store        ports.ContentStore
	orchestrator *pipeline.Orchestrator
	spacing      *rewrite.Chain
	pol          policy.Policy
	logger       *slog.Logger
	now          func() time.Time
}

// Deps wires the runner's collaborators.
type Deps struct {
	Store        ports.ContentStore
	Orchestrator *pipeline.Orchestrator
	Policy       policy.Policy
	Logger       *slog.Logger
	Now          func() time.Time
}

// NewRunner constructs the batch component.
func NewRunner(deps Deps) *Runner {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		store:        deps.Store,
		orchestrator: deps.Orchestrator,
		spacing:      rewrite.NewSpacingChain(deps.Policy),
		pol:          deps.Policy,
		logger:       deps.Logger,
		now:          now,
	}
}

// FixFormatting runs the full rewrite chain. An empty targetID means every
// article in the store.
func (r *Runner) FixFormatting(ctx context.Context, mode domain.RunMode, targetID string) (domain.RunSummary, error) {
	return r.run(ctx, mode, targetID, r.orchestrator.Fix)
}

// FixSpacing runs only the targeted section-label spacing chain.
func (r *Runner) FixSpacing(ctx context.Context, mode domain.RunMode, targetID string) (domain.RunSummary, error) {
	return r.run(ctx, mode, targetID, func(id, content string) domain.FixResult {
		return r.orchestrator.FixWith(r.spacing, id, content)
	})
}

// Analyze runs the detect phase across the selected articles and aggregates
// an AnalysisReport. It never touches the store's write path.
func (r *Runner) Analyze(ctx context.Context, targetID string) (domain.AnalysisReport, error) {
	articles, err := r.selectArticles(ctx, targetID)
	if err != nil {
		return domain.AnalysisReport{}, err
	}

	reports := make([]domain.IssueReport, 0, len(articles))
	for _, article := range articles {
		reports = append(reports, r.orchestrator.Analyze(article.ID, article.Title, article.Content))
	}
	return Aggregate(reports), nil
}

func (r *Runner) run(ctx context.Context, mode domain.RunMode, targetID string, fix func(id, content string) domain.FixResult) (domain.RunSummary, error) {
	if mode != domain.ModeApply {
		mode = domain.ModeDryRun
	}

	articles, err := r.selectArticles(ctx, targetID)
	if err != nil {
		return domain.RunSummary{Mode: mode}, err
	}

	summary := domain.RunSummary{
		Success:     true,
		Mode:        mode,
		FixesByRule: map[string]int{},
	}

	for _, article := range articles {
		if len(strings.TrimSpace(article.Content)) < r.pol.MinContentLength {
			summary.TotalSkipped++
			continue
		}

		result := fix(article.ID, article.Content)
		summary.TotalProcessed++
		for rule, n := range result.FixesByRule {
			summary.FixesByRule[rule] += n
		}

		entry := domain.RunResult{
			ID:      article.ID,
			Title:   article.Title,
			Slug:    article.Slug,
			Changed: result.Changed,
		}
		if result.Changed {
			summary.TotalFixed++
			entry.OriginalLength = len(result.OriginalContent)
			entry.FixedLength = len(result.FixedContent)
			entry.Preview = preview(result.FixedContent, r.pol.PreviewLength)
		}

		if mode == domain.ModeApply && result.Changed {
			if err := r.store.UpdateContent(ctx, article.ID, result.FixedContent, r.now()); err != nil {
				// Articles are independent: log, mark, move on so one bad
				// write never blocks the rest of the batch.
				r.error("persist fixed content", "article_id", article.ID, "error", err)
				entry.Error = err.Error()
				summary.TotalErrored++
				summary.TotalFixed--
			}
		}

		summary.Results = append(summary.Results, entry)
	}

	r.info("batch run finished",
		"mode", mode,
		"processed", summary.TotalProcessed,
		"fixed", summary.TotalFixed,
		"skipped", summary.TotalSkipped,
		"errored", summary.TotalErrored)

	return summary, nil
}

func (r *Runner) selectArticles(ctx context.Context, targetID string) ([]domain.Article, error) {
	if targetID != "" {
		article, err := r.store.GetByID(ctx, targetID)
		if err != nil {
			return nil, fmt.Errorf("get article %s: %w", targetID, err)
		}
		return []domain.Article{article}, nil
	}

	articles, err := r.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// Aggregate folds per-article issue reports into the batch-level view,
// sorted by issue count descending.
func Aggregate(reports []domain.IssueReport) domain.AnalysisReport {
	agg := domain.AnalysisReport{
		TotalArticles:    len(reports),
		IssuesByKind:     map[domain.IssueKind]int{},
		IssuesBySeverity: map[domain.Severity]int{},
	}

	for _, report := range reports {
		if report.IssueCount == 0 {
			continue
		}
		agg.ArticlesWithIssues++
		agg.TotalIssues += report.IssueCount
		for _, issue := range report.Issues {
			agg.IssuesByKind[issue.Kind]++
			agg.IssuesBySeverity[issue.Severity]++
		}
		agg.Articles = append(agg.Articles, report)
	}

	sort.SliceStable(agg.Articles, func(i, j int) bool {
		return agg.Articles[i].IssueCount > agg.Articles[j].IssueCount
	})

	return agg
}

func preview(content string, max int) string {
	r := []rune(content)
	if len(r) <= max {
		return content
	}
	return string(r[:max])
}

func (r *Runner) info(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Info(msg, args...)
	}
}

func (r *Runner) error(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Error(msg, args...)
	}
}
