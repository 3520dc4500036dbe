package sentryutil

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

// Init configures the global hub. An empty DSN leaves error tracking off,
// every capture then becomes a no-op inside sentry-go.
func Init(dsn, environment string, logger *slog.Logger) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			event.User = sentry.User{}
			return event
		},
	})
	if err != nil {
		logger.Warn("sentry init failed", "error", err)
		return
	}
	if dsn == "" {
		logger.Info("SENTRY_DSN empty, error tracking disabled")
	} else {
		logger.Info("sentry initialized", "environment", environment)
	}
}

func Flush() { sentry.Flush(2 * time.Second) }

// Reporter forwards swallowed errors to Sentry.
type Reporter struct{}

func (Reporter) CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Recover reports a recovered panic value.
func (Reporter) Recover(v any, tags map[string]string) {
	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		for k, val := range tags {
			scope.SetTag(k, val)
		}
		scope.SetLevel(sentry.LevelFatal)
		hub.Recover(v)
	})
}
