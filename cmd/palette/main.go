// Package main prints the preset project and label colors as swatch tables.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/hylla/taskboard/internal/domain"
)

func main() {
	if err := run(os.Stdout); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "palette: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer) error {
	sections := []struct {
		title  string
		colors []string
	}{
		{"PROJECT COLORS", domain.ProjectPalette()},
		{"LABEL COLORS", domain.LabelPalette()},
	}
	for i, s := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "=== %s ===\n", s.title); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, swatchTable(s.colors).Render()); err != nil {
			return err
		}
	}
	return nil
}

func swatchTable(colors []string) *table.Table {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("#", "Hex", "Sample").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
			}
			return lipgloss.NewStyle()
		})

	for i, hex := range colors {
		sample := lipgloss.NewStyle().
			Background(lipgloss.Color(hex)).
			Foreground(contrastColor(hex)).
			Width(12).
			Align(lipgloss.Center).
			Render(hex)
		t.Row(strconv.Itoa(i+1), hex, sample)
	}
	return t
}

// contrastColor picks black or white text for a #RRGGBB background.
func contrastColor(hex string) lipgloss.Color {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return lipgloss.Color("15")
	}
	// ITU-R BT.601 luma
	if 299*r+587*g+114*b > 128*1000 {
		return lipgloss.Color("0")
	}
	return lipgloss.Color("15")
}

func parseHex(hex string) (r, g, b int, ok bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
