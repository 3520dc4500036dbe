package web

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeReporter struct{ recovered []any }

func (r *fakeReporter) Recover(v any, tags map[string]string) { r.recovered = append(r.recovered, v) }

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestIndex_ServesWebApp(t *testing.T) {
	r := NewRouter(quietLogger(), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := w.Body.String()
	if body == "" {
		t.Fatal("empty body")
	}
	for _, want := range []string{"<!DOCTYPE html>", "telegram-web-app.js", "Nimble Roulette"} {
		if !strings.Contains(body, want) {
			t.Errorf("body lacks %q", want)
		}
	}
}

func TestHealth(t *testing.T) {
	r := NewRouter(quietLogger(), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}

func TestWebhookRouteOnlyWhenConfigured(t *testing.T) {
	plain := NewRouter(quietLogger(), nil)
	w := httptest.NewRecorder()
	plain.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader("{}")))
	if w.Code != http.StatusNotFound {
		t.Errorf("webhook route should be absent, got %d", w.Code)
	}

	hit := false
	withHook := NewRouter(quietLogger(), nil, WithWebhook("/telegram/webhook", func(c *gin.Context) {
		hit = true
		c.Status(http.StatusOK)
	}))
	w = httptest.NewRecorder()
	withHook.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader("{}")))
	if w.Code != http.StatusOK || !hit {
		t.Errorf("webhook route not mounted: %d", w.Code)
	}
}

func TestRecovery_ReportsPanic(t *testing.T) {
	rep := &fakeReporter{}
	r := NewRouter(quietLogger(), rep, func(e *gin.Engine) {
		e.GET("/boom", func(c *gin.Context) { panic("boom") })
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
	if len(rep.recovered) != 1 {
		t.Errorf("panic not reported")
	}
}

func TestServer_RunAndShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	_ = l.Close()

	s := New(strconv.Itoa(port), quietLogger(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://127.0.0.1:" + strconv.Itoa(port) + "/health")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		cancel()
		t.Fatalf("server never came up: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(6 * time.Second):
		t.Fatal("server did not shut down")
	}
}
