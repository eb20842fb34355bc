package store

import (
	"context"
	"testing"
)

func TestSettingsDefaults(t *testing.T) {
	t.Setenv("VIBING_KEYRING_DISABLED", "1")
	conn := openTestDB(t)
	settings := NewSettings(conn)

	got, err := settings.LoadSettings(context.Background())
	if err != nil {
		t.Fatalf("load on fresh store: %v", err)
	}
	if got.Theme != "system" {
		t.Errorf("expected theme default system, got %q", got.Theme)
	}
	if !got.AutoSave {
		t.Error("expected auto_save default true")
	}
	if got.DefaultProjectPath != "~/Documents/VibingProjects" {
		t.Errorf("unexpected default project path %q", got.DefaultProjectPath)
	}
	if got.AnthropicAPIKey != "" {
		t.Errorf("expected empty API key, got %q", got.AnthropicAPIKey)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	t.Setenv("VIBING_KEYRING_DISABLED", "1")
	conn := openTestDB(t)
	settings := NewSettings(conn)
	ctx := context.Background()

	err := settings.SaveSettings(ctx, map[string]string{
		KeyTheme:    "dark",
		KeyAutoSave: "false",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := settings.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Theme != "dark" {
		t.Errorf("expected theme dark, got %q", got.Theme)
	}
	if got.AutoSave {
		t.Error("expected auto_save false")
	}
	// Keys absent from the save keep their defaults.
	if got.DefaultProjectPath != "~/Documents/VibingProjects" {
		t.Errorf("unsaved key lost its default: %q", got.DefaultProjectPath)
	}
}

func TestSettingsUpsertNoDuplicates(t *testing.T) {
	t.Setenv("VIBING_KEYRING_DISABLED", "1")
	conn := openTestDB(t)
	settings := NewSettings(conn)
	ctx := context.Background()

	for _, theme := range []string{"light", "dark", "system"} {
		if err := settings.SaveSettings(ctx, map[string]string{KeyTheme: theme}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	var count int
	if err := conn.QueryRow("SELECT COUNT(*) FROM settings WHERE key = ?", KeyTheme).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected a single row for theme, found %d", count)
	}

	got, err := settings.LoadSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Theme != "system" {
		t.Errorf("expected last write to win, got %q", got.Theme)
	}
}

func TestSettingsAPIKeyFallsBackToDatabase(t *testing.T) {
	t.Setenv("VIBING_KEYRING_DISABLED", "1")
	conn := openTestDB(t)
	settings := NewSettings(conn)
	ctx := context.Background()

	if err := settings.SaveSettings(ctx, map[string]string{KeyAnthropicAPIKey: "sk-ant-test"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := settings.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.AnthropicAPIKey != "sk-ant-test" {
		t.Errorf("expected API key round trip via database, got %q", got.AnthropicAPIKey)
	}
}

func TestSettingsEmptyKeyRejected(t *testing.T) {
	t.Setenv("VIBING_KEYRING_DISABLED", "1")
	conn := openTestDB(t)
	settings := NewSettings(conn)

	err := settings.SaveSettings(context.Background(), map[string]string{"": "x"})
	if err == nil {
		t.Fatal("expected error for empty key")
	}
}
