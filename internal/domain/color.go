package domain

import (
	"regexp"
	"strings"
)

const (
	DefaultProjectColor = "#5B47E0"
	DefaultLabelColor   = "#3B82F6"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var projectPalette = []string{
	"#5B47E0", "#FF6B6B", "#4ECDC4", "#45B7D1", "#F39C12", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#3498DB", "#F1C40F", "#E67E22", "#2ECC71",
}

var labelPalette = []string{
	"#EF4444", "#F59E0B", "#10B981", "#3B82F6", "#8B5CF6", "#EC4899",
	"#06B6D4", "#84CC16", "#F97316", "#6366F1", "#14B8A6", "#DC2626",
}

// ProjectPalette returns the preset project colors.
func ProjectPalette() []string {
	return append([]string(nil), projectPalette...)
}

// LabelPalette returns the preset label colors.
func LabelPalette() []string {
	return append([]string(nil), labelPalette...)
}

// NormalizeColor validates a #RRGGBB value and upper-cases it. Blank input yields fallback.
func NormalizeColor(raw, fallback string) (string, error) {
	color := strings.TrimSpace(raw)
	if color == "" {
		color = fallback
	}
	if !strings.HasPrefix(color, "#") {
		color = "#" + color
	}
	if !hexColorPattern.MatchString(color) {
		return "", ErrInvalidColor
	}
	return strings.ToUpper(color), nil
}
