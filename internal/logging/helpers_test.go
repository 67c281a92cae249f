package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestHelpersAreNilSafe(t *testing.T) {
	Debug(nil, "debug")
	Info(nil, "info")
	Warn(nil, "warn")
	Error(nil, "error", errors.New("boom"))
}

func TestErrorAppendsErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: "debug", Output: &buf})

	Debug(logger, "d")
	Info(logger, "i")
	Warn(logger, "w")
	Error(logger, "publish failed", errors.New("boom"), FieldTopic, "match.changed")

	out := buf.String()
	for _, want := range []string{"msg=d", "msg=i", "msg=w", `msg="publish failed"`, "error=boom", "topic=match.changed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output %q", want, out)
		}
	}
}
