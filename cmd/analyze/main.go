// Command analyze runs the detect phase across every stored article and
// writes the aggregated issue report to disk for manual triage. It never
// touches the store's write path.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"os"

	_ "github.com/lib/pq"

	"ArticleNormalizer/internal/batch"
	"ArticleNormalizer/internal/config"
	"ArticleNormalizer/internal/infrastructure/storage"
	"ArticleNormalizer/internal/logging"
	"ArticleNormalizer/internal/pipeline"
	"ArticleNormalizer/pkg/logger"
)

func main() {
	out := flag.String("out", "", "report path (overrides config)")
	articleID := flag.String("article", "", "analyze a single article id")
	flag.Parse()

	progress := logger.New("analyze")
	cfg := config.Load()

	reportPath := cfg.Analysis.ReportPath
	if *out != "" {
		reportPath = *out
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		progress.Fatalf("open database: %v", err)
	}
	defer db.Close()

	pol := cfg.ResolvedPolicy()
	slogger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	runner := batch.NewRunner(batch.Deps{
		Store:        storage.NewPostgresStore(db),
		Orchestrator: pipeline.New(pol, slogger.With("component", "pipeline")),
		Policy:       pol,
		Logger:       slogger.With("component", "batch"),
	})

	report, err := runner.Analyze(context.Background(), *articleID)
	if err != nil {
		progress.Fatalf("analyze: %v", err)
	}

	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		progress.Fatalf("encode report: %v", err)
	}

	if err := os.WriteFile(reportPath, raw, 0o644); err != nil {
		progress.Fatalf("write report: %v", err)
	}

	progress.Printf("analyzed %d articles, %d with issues, report written to %s",
		report.TotalArticles, report.ArticlesWithIssues, reportPath)
}
