package components_test

import (
	"strings"
	"testing"

	"keyloop/internal/ui/components"
	"keyloop/internal/ui/theme"
)

func TestKeyboardFollowsActiveNotes(t *testing.T) {
	t.Parallel()
	kb := components.NewKeyboard()
	kb.SetWidth(30)

	low, high := kb.Window()
	if high-low > 20 {
		t.Fatalf("expected ten white keys, window is %d..%d", low, high)
	}

	kb.Follow([]string{"C7", "E7"})
	low, high = kb.Window()
	if low > 96 || high < 96 {
		t.Fatalf("C7 not in view: %d..%d", low, high)
	}

	kb.AutoScroll = false
	kb.Follow([]string{"A0"})
	if l, _ := kb.Window(); l != low {
		t.Fatalf("scrolled with auto-scroll off: %d", l)
	}
}

func TestKeyboardCursorClampsAndScrolls(t *testing.T) {
	t.Parallel()
	kb := components.NewKeyboard()
	kb.SetWidth(30)

	if kb.Cursor() != "C4" {
		t.Fatalf("cursor should start at middle C, got %s", kb.Cursor())
	}
	kb.MoveCursor(1)
	if kb.Cursor() != "C#4" {
		t.Fatalf("expected C#4, got %s", kb.Cursor())
	}
	kb.MoveCursor(-200)
	if kb.Cursor() != "A0" {
		t.Fatalf("cursor not clamped low: %s", kb.Cursor())
	}
	if low, _ := kb.Window(); low != 21 {
		t.Fatalf("window did not follow the cursor: %d", low)
	}
	kb.MoveCursor(500)
	if kb.Cursor() != "C8" {
		t.Fatalf("cursor not clamped high: %s", kb.Cursor())
	}
	if _, high := kb.Window(); high != 108 {
		t.Fatalf("window did not reach C8: %d", high)
	}
}

func TestKeyboardViewLabelsOctaves(t *testing.T) {
	t.Parallel()
	kb := components.NewKeyboard()
	kb.SetWidth(30)

	view := kb.View(theme.New(theme.Light), []string{"C4"})
	lines := strings.Split(view, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(lines))
	}
	if !strings.Contains(lines[2], "C4") {
		t.Fatalf("bottom row misses the C4 label: %q", lines[2])
	}
	if !strings.Contains(lines[3], "^^") {
		t.Fatalf("cursor marker missing: %q", lines[3])
	}
}
