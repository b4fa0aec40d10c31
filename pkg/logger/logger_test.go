package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := Init(WithFormat("xml")); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithFormat(FormatJSON), WithOutput(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := WithRequestID(context.Background(), "req-1")
	Get().Info(ctx, "entry appended", String("date", "2024-01-01"), Float64("weight_kg", 70.5))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v: %q", err, buf.String())
	}
	if line["msg"] != "entry appended" {
		t.Errorf("msg = %v", line["msg"])
	}
	if line["request_id"] != "req-1" {
		t.Errorf("request_id = %v", line["request_id"])
	}
	if line["weight_kg"] != 70.5 {
		t.Errorf("weight_kg = %v", line["weight_kg"])
	}
	if src, _ := line["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("source = %v, want the calling file", line["source"])
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithOutput(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	ctx := context.Background()

	Get().Debug(ctx, "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %q", buf.String())
	}

	if err := SetLevelString("debug"); err != nil {
		t.Fatalf("SetLevelString: %v", err)
	}
	Get().Debug(ctx, "visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug line missing: %q", buf.String())
	}

	if err := SetLevelString("loud"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
	_ = SetLevelString("info")
}

func TestLoggerNamedWith(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithOutput(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Named("store").With(String("backend", "csv")).Error(context.Background(), "append failed", Error(errors.New("disk full")))

	out := buf.String()
	for _, want := range []string{"store.backend=csv", "append failed", "disk full"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
