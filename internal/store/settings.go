package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/vibing2/vibing-desktop/internal/keyring"
	"github.com/vibing2/vibing-desktop/internal/logging"
)

// Settings is the typed view over the key/value settings table. Missing keys
// fall back to these defaults; loading never errors on an unconfigured store.
type Settings struct {
	AnthropicAPIKey    string `json:"anthropic_api_key,omitempty"`
	Theme              string `json:"theme"`
	AutoSave           bool   `json:"auto_save"`
	DefaultProjectPath string `json:"default_project_path"`
}

// Setting keys as stored in the database.
const (
	KeyAnthropicAPIKey    = "anthropic_api_key"
	KeyTheme              = "theme"
	KeyAutoSave           = "auto_save"
	KeyDefaultProjectPath = "default_project_path"
)

// keychainMarker is stored in place of the API key when the real value lives
// in the OS keychain.
const keychainMarker = "__keychain__"

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		Theme:              "system",
		AutoSave:           true,
		DefaultProjectPath: "~/Documents/VibingProjects",
	}
}

// SettingsStore is the single-row-per-key UPSERT store.
type SettingsStore struct {
	db *sql.DB
}

// NewSettings creates a settings store on the shared pool.
func NewSettings(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// SaveSettings upserts every key in values. The API key routes through the OS
// keychain when one is available; everything else lands in the settings table.
func (s *SettingsStore) SaveSettings(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().UnixNano()
	for key, value := range values {
		if key == "" {
			return validationErr("key", "must not be empty")
		}
		stored := value
		if key == KeyAnthropicAPIKey && value != "" && keyring.Available() {
			if err := keyring.SetAPIKey(value); err == nil {
				stored = keychainMarker
			} else {
				logging.Warnf("keychain unavailable, storing API key in database: %v", err)
			}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, stored, now,
		)
		if err != nil {
			return fmt.Errorf("save setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadSettings returns the typed settings, with defaults for any key that was
// never saved. A fresh database is a valid, fully-defaulted result.
func (s *SettingsStore) LoadSettings(ctx context.Context) (Settings, error) {
	settings := DefaultSettings()

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return settings, fmt.Errorf("fetch settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, fmt.Errorf("scan setting: %w", err)
		}
		switch key {
		case KeyAnthropicAPIKey:
			if value == keychainMarker {
				if v, err := keyring.GetAPIKey(); err == nil {
					settings.AnthropicAPIKey = v
				}
			} else {
				settings.AnthropicAPIKey = value
			}
		case KeyTheme:
			if value != "" {
				settings.Theme = value
			}
		case KeyAutoSave:
			if b, err := strconv.ParseBool(value); err == nil {
				settings.AutoSave = b
			}
		case KeyDefaultProjectPath:
			if value != "" {
				settings.DefaultProjectPath = value
			}
		}
	}
	return settings, rows.Err()
}
