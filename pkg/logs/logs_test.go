package logs

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLokiWriterPushesLine(t *testing.T) {
	var got lokiPush
	var user, pass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != lokiPushPath {
			t.Errorf("path = %s", r.URL.Path)
		}
		user, pass, _ = r.BasicAuth()
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode push: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	lw := newLokiWriter(srv.URL, "grafana", "secret", map[string]string{"service": "dtx", "env": "test"})
	lw.now = func() time.Time { return time.Unix(0, 1700000000000000000) }

	n, err := lw.Write([]byte(`{"msg":"triage_red"}` + "\n"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != len(`{"msg":"triage_red"}`)+1 {
		t.Errorf("Write() n = %d", n)
	}
	if user != "grafana" || pass != "secret" {
		t.Errorf("basic auth = %q/%q", user, pass)
	}
	if len(got.Streams) != 1 || got.Streams[0].Stream["service"] != "dtx" {
		t.Fatalf("push = %+v", got)
	}
	v := got.Streams[0].Values[0]
	if v[0] != "1700000000000000000" || v[1] != `{"msg":"triage_red"}` {
		t.Errorf("value = %v", v)
	}
}

func TestLokiWriterReportsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	lw := newLokiWriter(srv.URL, "", "", map[string]string{"service": "dtx"})
	if _, err := lw.Write([]byte("x")); err == nil {
		t.Error("Write() error = nil on 400")
	}
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	}}
	log := slog.New(h).With("service", "dtx")

	log.Info("roster_loaded")
	log.Error("alert_dispatch_failed")

	if strings.Count(a.String(), "\n") != 2 {
		t.Errorf("info handler got %q", a.String())
	}
	if strings.Count(b.String(), "\n") != 1 || !strings.Contains(b.String(), "alert_dispatch_failed") {
		t.Errorf("error handler got %q", b.String())
	}
	if !strings.Contains(b.String(), `"service":"dtx"`) {
		t.Errorf("attrs not propagated: %q", b.String())
	}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug enabled on multi handler")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
