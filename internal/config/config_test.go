package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	c := Default()
	if !c.Update.CheckOnLaunch {
		t.Error("expected check_on_launch default true")
	}
	if c.Update.LaunchDelaySeconds != 5 {
		t.Errorf("expected launch delay 5, got %d", c.Update.LaunchDelaySeconds)
	}
	if c.Update.CheckIntervalHours != 6 {
		t.Errorf("expected check interval 6h, got %d", c.Update.CheckIntervalHours)
	}
	if !c.Update.AutoDownload {
		t.Error("expected auto_download default true")
	}
	if c.Update.AutoInstall {
		t.Error("expected auto_install default false")
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Port != 27831 {
		t.Errorf("expected default port, got %d", c.Server.Port)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	os.Setenv("VIBING_TEST_MANIFEST", "https://example.com/latest.json")
	defer os.Unsetenv("VIBING_TEST_MANIFEST")

	c, err := LoadFromBytes([]byte("update:\n  manifest_url: ${VIBING_TEST_MANIFEST}\n  auto_download: false\n"))
	if err != nil {
		t.Fatalf("LoadFromBytes: %v", err)
	}
	if c.Update.ManifestURL != "https://example.com/latest.json" {
		t.Errorf("env not expanded: %q", c.Update.ManifestURL)
	}
	if c.Update.AutoDownload {
		t.Error("auto_download override ignored")
	}
	// Untouched fields keep defaults
	if c.Update.LaunchDelaySeconds != 5 {
		t.Errorf("partial config clobbered defaults: %d", c.Update.LaunchDelaySeconds)
	}
}

func TestLoadMalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("update: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
