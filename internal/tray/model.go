// Package tray keeps the native menu in sync with the project store. The menu
// model is pure data so it can be tested without a window system; the wails
// glue lives behind the desktop build tag.
package tray

import (
	"unicode/utf8"

	"github.com/vibing2/vibing-desktop/internal/store"
)

const (
	// maxRecent bounds the recent-projects submenu.
	maxRecent = 5

	// maxLabelRunes keeps long project names from stretching the native menu.
	maxLabelRunes = 40
)

// RecentEntry is one row of the recent-projects submenu.
type RecentEntry struct {
	ProjectID string
	Label     string
}

// Model is the derived menu state: never a source of truth, recomputed from
// the store on every refresh.
type Model struct {
	Recent []RecentEntry
}

// BuildModel projects the store summaries (already sorted most recent first)
// into menu entries.
func BuildModel(summaries []store.Summary) Model {
	m := Model{Recent: make([]RecentEntry, 0, maxRecent)}
	for _, s := range summaries {
		if len(m.Recent) == maxRecent {
			break
		}
		m.Recent = append(m.Recent, RecentEntry{
			ProjectID: s.ID,
			Label:     truncateLabel(s.Name),
		})
	}
	return m
}

// truncateLabel bounds a display name to maxLabelRunes runes, appending an
// ellipsis when cut.
func truncateLabel(name string) string {
	if name == "" {
		return "Untitled"
	}
	if utf8.RuneCountInString(name) <= maxLabelRunes {
		return name
	}
	runes := []rune(name)
	return string(runes[:maxLabelRunes]) + "…"
}
