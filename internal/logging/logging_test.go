package logging

import (
	"bytes"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestLevelFromFlags
// ---------------------------------------------------------------------------

func TestLevelFromFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		quiet, verbose bool
		want           Level
	}{
		{"default", false, false, LevelNormal},
		{"quiet", true, false, LevelQuiet},
		{"verbose", false, true, LevelVerbose},
		{"quiet wins", true, true, LevelQuiet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := LevelFromFlags(tt.quiet, tt.verbose); got != tt.want {
				t.Errorf("LevelFromFlags(%v, %v) = %v, want %v", tt.quiet, tt.verbose, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestNew - level filtering
// ---------------------------------------------------------------------------

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		level     Level
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"normal", LevelNormal, false, true, true},
		{"quiet", LevelQuiet, false, false, true},
		{"verbose", LevelVerbose, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := New(&buf, tt.level, true)
			logger.Debug().Msg("debug-line")
			logger.Info().Msg("info-line")
			logger.Warn().Msg("warn-line")

			out := buf.String()
			if got := strings.Contains(out, "debug-line"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "info-line"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}
			if got := strings.Contains(out, "warn-line"); got != tt.wantWarn {
				t.Errorf("warn logged = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestWithPass(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, id := WithPass(New(&buf, LevelNormal, true))
	if len(id) != 8 {
		t.Fatalf("pass id = %q, want 8 characters", id)
	}

	logger.Info().Msg("hello")
	if !strings.Contains(buf.String(), "pass="+id) {
		t.Errorf("output missing pass field:\n%s", buf.String())
	}

	_, other := WithPass(Nop())
	if other == id {
		t.Errorf("pass ids should differ, both %q", id)
	}
}
