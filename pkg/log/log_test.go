package log

import (
	"bytes"
	"strings"
	"testing"
)

// helper resets output and returns buffer and logger
func newTestLogger(t *testing.T, name string) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	SetLevel(LevelInfo)
	t.Cleanup(func() { SetLevel(LevelInfo) })
	return ForService(name), buf
}

func TestPrefixInfo(t *testing.T) {
	const name = "prefix_service_test"
	l, buf := newTestLogger(t, name)

	l.Infof("hello %s", "world")
	out := buf.String()

	if !strings.Contains(out, "INFO ["+name+">] hello world") {
		t.Fatalf("expected prefixed info line, got: %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	const name = "level_filter_test"
	l, buf := newTestLogger(t, name)

	SetLevel(LevelWarn)
	l.Infof("quiet")
	l.Warnf("loud")
	l.Errorf("louder")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info line printed below warn level: %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "louder") {
		t.Errorf("expected warn and error lines, got: %q", out)
	}
}

func TestDebugPerService(t *testing.T) {
	const name = "debug_service_specific"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	l.Debugf("should not appear")
	if strings.Contains(buf.String(), "should not appear") {
		t.Fatalf("debug message appeared while debug disabled")
	}

	EnableDebugFor(name)
	defer DisableDebugFor(name)
	l.Debugf("visible now")
	if !strings.Contains(buf.String(), "visible now") {
		t.Fatalf("expected debug message after enabling per-service debug; got: %q", buf.String())
	}
}

func TestDebugGlobal(t *testing.T) {
	const name = "debug_service_global"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	SetGlobalDebug(true)
	l.Debugf("global visible")
	if !strings.Contains(buf.String(), "DEBUG ["+name+">] global visible") {
		t.Fatalf("expected debug message after enabling global debug; got: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q): unexpected error %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}
