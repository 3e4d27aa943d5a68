package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"ArticleNormalizer/internal/batch"
	"ArticleNormalizer/internal/domain"
	"ArticleNormalizer/internal/ports"
)

// Server exposes the administrative normalization operations over HTTP.
// Every mutating route sits behind the admin bearer-token middleware.
type Server struct {
	echo   *echo.Echo
	addr   string
	runner *batch.Runner
	logger *slog.Logger
}

// NewServer builds the echo instance and routes.
func NewServer(addr, adminToken string, runner *batch.Runner, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, addr: addr, runner: runner, logger: logger}

	e.GET("/health", s.health)

	admin := e.Group("/admin", AdminAuth(adminToken, logger))
	admin.POST("/articles/fix-formatting", s.fixFormatting)
	admin.POST("/articles/fix-spacing", s.fixSpacing)
	admin.POST("/articles/analyze", s.analyze)

	return s
}

// Start blocks serving HTTP until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	err := s.echo.Start(s.addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

type fixRequest struct {
	ArticleID string `json:"articleId"`
	DryRun    *bool  `json:"dryRun"`
}

// mode defaults to dry-run; persisting requires an explicit dryRun=false.
func (req fixRequest) mode() domain.RunMode {
	if req.DryRun != nil && !*req.DryRun {
		return domain.ModeApply
	}
	return domain.ModeDryRun
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) fixFormatting(c echo.Context) error {
	return s.runFix(c, s.runner.FixFormatting)
}

func (s *Server) fixSpacing(c echo.Context) error {
	return s.runFix(c, s.runner.FixSpacing)
}

func (s *Server) runFix(c echo.Context, fix func(context.Context, domain.RunMode, string) (domain.RunSummary, error)) error {
	var req fixRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	summary, err := fix(c.Request().Context(), req.mode(), req.ArticleID)
	if err != nil {
		return s.failFromError(c, err)
	}

	return c.JSON(http.StatusOK, summary)
}

func (s *Server) analyze(c echo.Context) error {
	var req fixRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	report, err := s.runner.Analyze(c.Request().Context(), req.ArticleID)
	if err != nil {
		return s.failFromError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"report":  report,
	})
}

// failFromError maps pipeline errors onto the response envelope without
// leaking store internals.
func (s *Server) failFromError(c echo.Context, err error) error {
	if errors.Is(err, ports.ErrNotFound) {
		return fail(c, http.StatusNotFound, "article not found")
	}
	s.logger.Error("admin operation failed", "path", c.Path(), "error", err)
	return fail(c, http.StatusInternalServerError, "internal error")
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]any{
		"success": false,
		"error":   message,
	})
}
