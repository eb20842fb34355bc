// Package updater drives the release lifecycle: manifest check, artifact
// download with progress, signature verification, and in-place install.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"
)

const (
	// HTTP timeout for the manifest check
	checkTimeout = 5 * time.Second
)

// Manifest is the release document published alongside each build.
type Manifest struct {
	Version   string                   `json:"version"`
	Date      string                   `json:"date"`
	Notes     string                   `json:"notes"`
	Platforms map[string]PlatformEntry `json:"platforms"`
}

// PlatformEntry describes the artifact for one os-arch target.
type PlatformEntry struct {
	Signature string `json:"signature"`
	URL       string `json:"url"`
	Format    string `json:"format"`
	Hash      string `json:"hash"`
	Size      int64  `json:"size"`
}

// platformKey identifies the running target in the manifest's platforms map.
func platformKey() string {
	return runtime.GOOS + "-" + runtime.GOARCH
}

// fetchManifest downloads and decodes the release manifest. It respects the
// provided context for cancellation and applies its own 5-second timeout on top.
func fetchManifest(ctx context.Context, client *http.Client, url, currentVersion string) (*Manifest, error) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("updater: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "vibing/"+currentVersion)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("updater: fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("updater: manifest endpoint returned %d", resp.StatusCode)
	}

	var manifest Manifest
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("updater: decode manifest: %w", err)
	}
	return &manifest, nil
}

// normalizeVersion strips the leading "v" prefix for comparison.
func normalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// isNewer does a strict semver comparison (major.minor.patch).
// Returns true if latest > current. Equal versions are not newer.
func isNewer(latest, current string) bool {
	lParts := splitVersion(latest)
	cParts := splitVersion(current)

	for i := 0; i < 3; i++ {
		if lParts[i] > cParts[i] {
			return true
		}
		if lParts[i] < cParts[i] {
			return false
		}
	}
	return false
}

// splitVersion parses "1.2.3" into [1, 2, 3]. Returns [0,0,0] on failure.
func splitVersion(v string) [3]int {
	var parts [3]int
	fmt.Sscanf(v, "%d.%d.%d", &parts[0], &parts[1], &parts[2])
	return parts
}
