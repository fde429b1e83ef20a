package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelInfo)
	t.Cleanup(func() { SetLevel(LevelInfo) })

	Debug("hidden", "k", 1)
	if buf.Len() != 0 {
		t.Fatalf("debug written at INFO level: %q", buf.String())
	}

	Error("load failed", errors.New("boom"), "period", 24290, 7, "skipped", "odd")
	line := strings.TrimSpace(buf.String())

	var rec map[string]any
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("unmarshal %q: %v", line, err)
	}
	if rec["level"] != "error" || rec["message"] != "load failed" || rec["error"] != "boom" {
		t.Errorf("record = %v", rec)
	}
	if rec["period"] != float64(24290) {
		t.Errorf("period = %v, want 24290", rec["period"])
	}
	if _, ok := rec["skipped"]; ok {
		t.Errorf("value of non-string key leaked: %v", rec)
	}

	buf.Reset()
	SetLevel(LevelDebug)
	Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("debug not written at DEBUG level: %q", buf.String())
	}
}
