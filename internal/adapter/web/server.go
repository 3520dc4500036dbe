package web

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed static/index.html
var indexHTML []byte

// PanicReporter is told about panics recovered by the router.
type PanicReporter interface {
	Recover(v any, tags map[string]string)
}

type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

type Option func(*gin.Engine)

// WithWebhook mounts a POST route for pushed Telegram updates.
func WithWebhook(path string, h gin.HandlerFunc) Option {
	return func(r *gin.Engine) { r.POST(path, h) }
}

// NewRouter builds the routes: the Web App page and a health probe.
func NewRouter(logger *slog.Logger, reporter PanicReporter, opts ...Option) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(logger), recovery(logger, reporter))

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func New(port string, logger *slog.Logger, reporter PanicReporter, opts ...Option) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         ":" + port,
			Handler:      NewRouter(logger, reporter, opts...),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then shuts down within 5 seconds.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server started", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("web server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web server shutdown: %w", err)
	}
	s.logger.Info("web server stopped")
	return nil
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func recovery(logger *slog.Logger, reporter PanicReporter) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, v any) {
		logger.Error("panic in http handler", "method", c.Request.Method, "path", c.Request.URL.Path, "panic", v)
		if reporter != nil {
			reporter.Recover(v, map[string]string{"endpoint": c.Request.URL.Path, "method": c.Request.Method})
		}
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
