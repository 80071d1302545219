package domain

import (
	"strings"
	"time"
)

type Label struct {
	ID        string
	Name      string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewLabel(id, name, color string, now time.Time) (Label, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Label{}, ErrInvalidID
	}
	if name == "" {
		return Label{}, ErrInvalidName
	}
	normalized, err := NormalizeColor(color, DefaultLabelColor)
	if err != nil {
		return Label{}, err
	}
	return Label{
		ID:        id,
		Name:      name,
		Color:     normalized,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

func (l *Label) UpdateDetails(name, color string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	normalized, err := NormalizeColor(color, l.Color)
	if err != nil {
		return err
	}
	l.Name = name
	l.Color = normalized
	l.UpdatedAt = now.UTC()
	return nil
}

// ResolveLabels maps ids onto known labels in id order and drops ids with no match.
func ResolveLabels(ids []string, labels []Label) []Label {
	byID := make(map[string]Label, len(labels))
	for _, label := range labels {
		byID[label.ID] = label
	}
	out := make([]Label, 0, len(ids))
	for _, id := range ids {
		if label, ok := byID[id]; ok {
			out = append(out, label)
		}
	}
	return out
}
