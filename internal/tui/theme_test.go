package tui

import (
	"regexp"
	"testing"

	"github.com/jask/malla/internal/curriculum"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func TestAllPaletteColorsAreValidHex(t *testing.T) {
	colors := AllPaletteColors()
	if len(colors) != 15 {
		t.Errorf("expected 15 palette colors, got %d", len(colors))
	}
	for _, c := range colors {
		hex := string(c)
		if !hexColorRegex.MatchString(hex) {
			t.Errorf("invalid hex color: %q", hex)
		}
	}
}

func TestStateGlyphsAreDistinct(t *testing.T) {
	seen := map[string]curriculum.State{}
	for _, s := range []curriculum.State{curriculum.Pending, curriculum.InProgress, curriculum.Completed} {
		g := stateGlyph(s)
		if prev, ok := seen[g]; ok {
			t.Fatalf("%s and %s share glyph %q", prev, s, g)
		}
		seen[g] = s
	}
	if stateGlyph("archived") != stateGlyph(curriculum.Pending) {
		t.Errorf("unknown states should draw as pending")
	}
}
