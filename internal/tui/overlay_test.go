package tui

import (
	"strings"
	"testing"
)

func TestOverlayAtKeepsSurroundingText(t *testing.T) {
	base := "abcdefghij\nklmnopqrst\nuvwxyz"
	got := overlayAt(base, "XY\nZW", 3, 1, 10, 3)
	want := "abcdefghij\nklmXYpqrst\nuvwZWz    "
	if got != want {
		t.Fatalf("overlayAt =\n%q\nwant\n%q", got, want)
	}
}

func TestOverlayCenterGrowsShortBase(t *testing.T) {
	got := overlayCenter("hi", "one\ntwo\nsix", 0, 0)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), got)
	}
	if !strings.Contains(lines[2], "six") {
		t.Fatalf("box rows dropped: %q", got)
	}
}
