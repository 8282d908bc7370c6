package pipeline

import "testing"

// ---------------------------------------------------------------------------
// TestSlugify - heading text to anchor ID
// ---------------------------------------------------------------------------

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"spaces become hyphens", "Hello World", "hello-world"},
		{"underscores kept", "Hello_World", "hello_world"},
		{"accents decomposed", "Héllo Wörld", "hello-world"},
		{"punctuation dropped", "What's new?", "whats-new"},
		{"symbols collapse separators", "C++ & Go", "c-go"},
		{"hyphen runs collapse", "a -- b", "a-b"},
		{"surrounding space trimmed", "  padded  ", "padded"},
		{"digits kept", "Step 2", "step-2"},
		{"non-latin dropped", "日本語", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Slugify(tt.text); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHeadingIDs - de-duplication
// ---------------------------------------------------------------------------

func TestHeadingIDs(t *testing.T) {
	t.Parallel()

	t.Run("duplicates get counters", func(t *testing.T) {
		t.Parallel()

		ids := newHeadingIDs()
		want := []string{"intro", "intro_1", "intro_2"}
		for i, w := range want {
			if got := string(ids.Generate([]byte("Intro"), 0)); got != w {
				t.Errorf("Generate #%d = %q, want %q", i, got, w)
			}
		}
	})

	t.Run("empty slug gets a counter", func(t *testing.T) {
		t.Parallel()

		ids := newHeadingIDs()
		if got := string(ids.Generate([]byte("!!!"), 0)); got != "_1" {
			t.Errorf("Generate = %q, want %q", got, "_1")
		}
	})

	t.Run("explicit IDs are reserved", func(t *testing.T) {
		t.Parallel()

		ids := newHeadingIDs()
		ids.Put([]byte("setup"))
		if got := string(ids.Generate([]byte("Setup"), 0)); got != "setup_1" {
			t.Errorf("Generate = %q, want %q", got, "setup_1")
		}
	})

	t.Run("existing counter is bumped", func(t *testing.T) {
		t.Parallel()

		ids := newHeadingIDs()
		ids.Put([]byte("step_1"))
		if got := string(ids.Generate([]byte("Step_1"), 0)); got != "step_2" {
			t.Errorf("Generate = %q, want %q", got, "step_2")
		}
	})
}
