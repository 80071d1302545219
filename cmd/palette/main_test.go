package main

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/hylla/taskboard/internal/domain"
)

// TestRunListsEveryPresetColor verifies both palettes are printed.
func TestRunListsEveryPresetColor(t *testing.T) {
	var out strings.Builder
	if err := run(&out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	got := out.String()
	for _, header := range []string{"PROJECT COLORS", "LABEL COLORS"} {
		if !strings.Contains(got, header) {
			t.Fatalf("expected %q in output", header)
		}
	}
	for _, hex := range append(domain.ProjectPalette(), domain.LabelPalette()...) {
		if !strings.Contains(got, hex) {
			t.Fatalf("expected %s in output", hex)
		}
	}
}

// TestContrastColor verifies text color selection against light and dark backgrounds.
func TestContrastColor(t *testing.T) {
	cases := map[string]lipgloss.Color{
		"#FFFFFF": "0",
		"#F1FA8C": "0",
		"#000000": "15",
		"#282A36": "15",
		"nope":    "15",
	}
	for hex, want := range cases {
		if got := contrastColor(hex); got != want {
			t.Fatalf("contrastColor(%q) = %q, want %q", hex, got, want)
		}
	}
}
