package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigureWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: DebugLevel, Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: InfoLevel}) })

	Debug().Str("course", "7").Msg("advanced")
	out := buf.String()
	if !strings.Contains(out, `"course":"7"`) || !strings.Contains(out, `"message":"advanced"`) {
		t.Fatalf("unexpected log line: %s", out)
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: WarnLevel, Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: InfoLevel}) })

	Info().Msg("hidden")
	Warn().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("level filter not applied: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{"DEBUG": DebugLevel, " warn ": WarnLevel, "error": ErrorLevel, "": InfoLevel, "trace": InfoLevel}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestOpenFileCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "malla", "malla.log")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("log file missing: %v", err)
	}
}
