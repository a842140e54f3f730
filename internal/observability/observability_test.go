package observability

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNilObservability(t *testing.T) {
	obs := GetObservability(context.Background())
	if nil != obs {
		t.Fatalf("expected nil Observability, got %+v", obs)
	}
	if nil == obs.Log() {
		t.Error("Oops, nil Observability returned a nil Logger")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&buf, "warn")
	if nil != err {
		t.Fatalf("failed NewLogger, got error %v", err)
	}
	log.Info("hidden")
	log.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("failed level control, got %q", buf.String())
	}

	if _, err = NewLogger(&buf, "loud"); nil == err {
		t.Error("Oops, unknown level accepted")
	}
}

func TestNewLoggerOff(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&buf, "OFF")
	if nil != err {
		t.Fatalf("failed NewLogger, got error %v", err)
	}
	if NoopLogger() != log {
		t.Error("Oops, off level did not return NoopLogger")
	}
	log.Error("hidden")
	if 0 != buf.Len() {
		t.Errorf("failed silence control, got %q", buf.String())
	}
	if log.Enabled(context.Background(), slog.LevelError) {
		t.Error("Oops, NoopLogger enabled at error level")
	}
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log, _ := NewLogger(&buf, "debug")

	var seenTrace bool
	hdlr := Middleware{TraceIdHeader: "X-Trace", Device: "token-1"}.Wrap(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			GetObservability(r.Context()).Log().Debug("inside")
			seenTrace = nil != GetObservability(r.Context())
			w.WriteHeader(http.StatusTeapot)
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("X-Trace", "trace-42")
	req = req.WithContext(WithLogger(req.Context(), log))
	rec := httptest.NewRecorder()
	hdlr.ServeHTTP(rec, req)

	if !seenTrace {
		t.Error("Oops, handler did not receive an Observability")
	}
	out := buf.String()
	for _, want := range []string{"tId=trace-42", "device=token-1", "status=418", "msg=inside"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output misses %q\n%s", want, out)
		}
	}
}
