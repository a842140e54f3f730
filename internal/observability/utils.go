package observability

import (
	"context"
	"log/slog"
	"strings"
	"testing"
)

// SetTestDebugLogging assigns DEBUG level to slog Default logger for test duration
func SetTestDebugLogging(t testing.TB) {
	oldLevel := slog.SetLogLoggerLevel(slog.LevelDebug)
	if oldLevel != slog.LevelDebug {
		t.Logf("Setting slog level to %s", slog.LevelDebug)
		t.Cleanup(func() {
			t.Logf("Restoring slog level to %s", oldLevel)
			slog.SetLogLoggerLevel(oldLevel)
		})
	}
}

// TestContext returns a Context whose Logger writes DEBUG records to the test log.
// Records only show for failed tests or with go test -v.
func TestContext(t testing.TB) context.Context {
	logger := slog.New(slog.NewTextHandler(testWriter{t: t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return WithLogger(context.Background(), logger)
}

type testWriter struct {
	t testing.TB
}

func (self testWriter) Write(data []byte) (int, error) {
	self.t.Helper()
	self.t.Log(strings.TrimRight(string(data), "\n"))
	return len(data), nil
}
