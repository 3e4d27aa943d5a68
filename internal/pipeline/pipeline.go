package pipeline

import (
	"log/slog"

	"ArticleNormalizer/internal/detect"
	"ArticleNormalizer/internal/domain"
	"ArticleNormalizer/internal/policy"
	"ArticleNormalizer/internal/rewrite"
)

// Orchestrator runs the two-phase normalization over one article at a time:
// detect builds an IssueReport, fix runs the full rewrite chain. The phases
// are independent; every rule always runs regardless of what was detected,
// which is what makes the pipeline safe on already-clean content.
type Orchestrator struct {
	suite  *detect.Suite
	chain  *rewrite.Chain
	logger *slog.Logger
}

// New wires the detector suite and rewrite chain for a policy.
func New(pol policy.Policy, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		suite:  detect.NewSuite(pol),
		chain:  rewrite.NewChain(pol),
		logger: logger,
	}
}

// Analyze runs the detect phase only.
func (o *Orchestrator) Analyze(articleID, title, content string) domain.IssueReport {
	issues := o.suite.Run(content)
	report := domain.IssueReport{
		ArticleID:  articleID,
		Title:      title,
		Issues:     issues,
		IssueCount: len(issues),
	}
	if len(issues) > 0 {
		o.debug("issues detected", "article_id", articleID, "count", len(issues))
	}
	return report
}

// Fix runs the rewrite chain against the original content and reports
// per-rule change counts. Changed is plain string inequality.
func (o *Orchestrator) Fix(articleID, content string) domain.FixResult {
	return o.fixWith(o.chain, articleID, content)
}

// FixWith runs an alternate chain (e.g. the targeted spacing chain) under
// the same result contract.
func (o *Orchestrator) FixWith(chain *rewrite.Chain, articleID, content string) domain.FixResult {
	return o.fixWith(chain, articleID, content)
}

func (o *Orchestrator) fixWith(chain *rewrite.Chain, articleID, content string) domain.FixResult {
	fixed, counts := chain.Apply(content)
	result := domain.FixResult{
		ArticleID:       articleID,
		OriginalContent: content,
		FixedContent:    fixed,
		FixesByRule:     counts,
		Changed:         fixed != content,
	}
	if result.Changed {
		o.debug("content rewritten", "article_id", articleID, "before", len(content), "after", len(fixed))
	}
	return result
}

func (o *Orchestrator) debug(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}
}
