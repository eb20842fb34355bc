package tray

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/vibing2/vibing-desktop/internal/store"
)

func TestBuildModelLimit(t *testing.T) {
	var summaries []store.Summary
	for i := 0; i < 8; i++ {
		summaries = append(summaries, store.Summary{
			ID:   fmt.Sprintf("p%d", i),
			Name: fmt.Sprintf("Project %d", i),
		})
	}

	m := BuildModel(summaries)
	if len(m.Recent) != maxRecent {
		t.Fatalf("expected %d entries, got %d", maxRecent, len(m.Recent))
	}
	// Store order (most recent first) is preserved.
	if m.Recent[0].ProjectID != "p0" || m.Recent[4].ProjectID != "p4" {
		t.Fatalf("unexpected ordering: %+v", m.Recent)
	}
}

func TestBuildModelTruncation(t *testing.T) {
	long := strings.Repeat("a", 60)
	m := BuildModel([]store.Summary{{ID: "p1", Name: long}})

	label := m.Recent[0].Label
	if !strings.HasSuffix(label, "…") {
		t.Fatalf("expected ellipsis suffix, got %q", label)
	}
	if got := utf8.RuneCountInString(label); got != maxLabelRunes+1 {
		t.Fatalf("expected %d runes, got %d", maxLabelRunes+1, got)
	}
}

func TestBuildModelTruncationMultibyte(t *testing.T) {
	long := strings.Repeat("日", 50)
	m := BuildModel([]store.Summary{{ID: "p1", Name: long}})

	label := m.Recent[0].Label
	if got := utf8.RuneCountInString(label); got != maxLabelRunes+1 {
		t.Fatalf("expected %d runes, got %d", maxLabelRunes+1, got)
	}
	if !strings.HasPrefix(label, "日") {
		t.Fatalf("truncation corrupted runes: %q", label)
	}
}

func TestBuildModelShortNamesUntouched(t *testing.T) {
	m := BuildModel([]store.Summary{{ID: "p1", Name: "Todo App"}})
	if m.Recent[0].Label != "Todo App" {
		t.Fatalf("short name altered: %q", m.Recent[0].Label)
	}
}

func TestBuildModelEmptyName(t *testing.T) {
	m := BuildModel([]store.Summary{{ID: "p1"}})
	if m.Recent[0].Label != "Untitled" {
		t.Fatalf("expected Untitled fallback, got %q", m.Recent[0].Label)
	}
}

func TestBuildModelEmpty(t *testing.T) {
	m := BuildModel(nil)
	if len(m.Recent) != 0 {
		t.Fatalf("expected no entries, got %d", len(m.Recent))
	}
}
