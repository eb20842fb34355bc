package updater

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	// Total wall-clock budget for one artifact download.
	downloadTimeout = 10 * time.Minute

	// Minimum gap between progress callbacks so the event bus is not
	// flooded on fast links.
	progressInterval = 200 * time.Millisecond
)

// ProgressFunc receives download progress. total is 0 when the server did not
// report a length.
type ProgressFunc func(downloaded, total int64)

// downloadArtifact streams url into a temp file and returns its path. The
// progress callback fires at most once per progressInterval, plus once at
// completion. The caller owns the returned file.
func downloadArtifact(ctx context.Context, client *http.Client, url string, size int64, progress ProgressFunc) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("updater: create download request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("updater: download artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("updater: artifact endpoint returned %d", resp.StatusCode)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = size
	}

	tmp, err := os.CreateTemp("", "vibing-update-*"+filepath.Ext(url))
	if err != nil {
		return "", fmt.Errorf("updater: create temp file: %w", err)
	}
	defer tmp.Close()

	var downloaded int64
	lastReport := time.Time{}
	buf := make([]byte, 64*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := tmp.Write(buf[:n]); err != nil {
				os.Remove(tmp.Name())
				return "", fmt.Errorf("updater: write artifact: %w", err)
			}
			downloaded += int64(n)
			if progress != nil && time.Since(lastReport) >= progressInterval {
				lastReport = time.Now()
				progress(downloaded, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			os.Remove(tmp.Name())
			return "", fmt.Errorf("updater: read artifact: %w", readErr)
		}
	}

	if progress != nil {
		progress(downloaded, total)
	}
	return tmp.Name(), nil
}
