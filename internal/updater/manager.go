package updater

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/vibing2/vibing-desktop/internal/config"
	"github.com/vibing2/vibing-desktop/internal/events"
	"github.com/vibing2/vibing-desktop/internal/logging"
	"github.com/vibing2/vibing-desktop/internal/markdown"
	"github.com/vibing2/vibing-desktop/internal/notify"
)

// Status is the update session state. One session is active per process;
// transitions only move forward within a cycle, with Error reachable from any
// non-terminal state.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusChecking    Status = "checking"
	StatusUpToDate    Status = "up-to-date"
	StatusAvailable   Status = "available"
	StatusDownloading Status = "downloading"
	StatusDownloaded  Status = "downloaded"
	StatusInstalling  Status = "installing"
	StatusError       Status = "error"
)

// canStartCheck reports whether a new check cycle may begin. A check in any
// other state is a no-op that returns the current session untouched.
func (s Status) canStartCheck() bool {
	switch s {
	case StatusIdle, StatusUpToDate, StatusError:
		return true
	}
	return false
}

// session is the in-memory state of the active update cycle.
type session struct {
	status     Status
	target     string
	notes      string
	date       string
	entry      PlatformEntry
	downloaded int64
	total      int64
	artifact   string
	verified   bool
	err        string
}

// StatusInfo is a snapshot of the session for the command surface.
type StatusInfo struct {
	Status         Status `json:"status"`
	CurrentVersion string `json:"current_version"`
	LatestVersion  string `json:"latest_version,omitempty"`
	Notes          string `json:"notes,omitempty"`
	NotesHTML      string `json:"notes_html,omitempty"`
	Date           string `json:"date,omitempty"`
	Downloaded     int64  `json:"downloaded,omitempty"`
	Total          int64  `json:"total,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Event payloads pushed on the bus.
type AvailableEvent struct {
	Version   string `json:"version"`
	Notes     string `json:"notes"`
	NotesHTML string `json:"notes_html,omitempty"`
	Date      string `json:"date,omitempty"`
}

type ProgressEvent struct {
	Downloaded int64   `json:"downloaded"`
	Total      int64   `json:"total"`
	Percentage float64 `json:"percentage"`
}

type DownloadedEvent struct {
	Version string `json:"version"`
}

type InstallingEvent struct {
	Version string `json:"version"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

// Manager owns the update session. All state changes go through it; the
// background timer and command handlers never touch the session directly.
type Manager struct {
	mu       sync.Mutex
	version  string
	cfg      config.UpdateConfig
	events   *events.Subject
	client   *http.Client
	pubKey   ed25519.PublicKey
	platform string
	sess     session

	launchTimer *time.Timer
	stopTicker  chan struct{}

	// applyFn is swapped in tests to avoid replacing the test binary.
	applyFn func(string) error
}

// New creates a manager for the given running version. Events are emitted on
// subject as the session advances.
func New(version string, cfg config.UpdateConfig, subject *events.Subject) *Manager {
	return &Manager{
		version:  version,
		cfg:      cfg,
		events:   subject,
		client:   &http.Client{},
		pubKey:   defaultPublicKey(),
		platform: platformKey(),
		sess:     session{status: StatusIdle},
		applyFn:  Apply,
	}
}

// Start arms the launch check and the background interval timer per the
// current config.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.CheckOnLaunch {
		delay := time.Duration(m.cfg.LaunchDelaySeconds) * time.Second
		m.launchTimer = time.AfterFunc(delay, func() {
			if _, err := m.Check(context.Background()); err != nil {
				logging.Warnf("updater: launch check: %v", err)
			}
		})
	}
	m.startTickerLocked()
}

// Stop cancels the launch timer and the background ticker. An in-flight check
// is not interrupted.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.launchTimer != nil {
		m.launchTimer.Stop()
		m.launchTimer = nil
	}
	m.stopTickerLocked()
}

// GetConfig returns the current update configuration.
func (m *Manager) GetConfig() config.UpdateConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// SetConfig replaces the update configuration at runtime. The background
// ticker is stopped and re-armed so an interval change (or a zero interval,
// which disables background checks) takes effect immediately.
func (m *Manager) SetConfig(cfg config.UpdateConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg = cfg
	m.stopTickerLocked()
	m.startTickerLocked()
}

func (m *Manager) startTickerLocked() {
	if m.stopTicker != nil || m.cfg.CheckIntervalHours <= 0 {
		return
	}
	stop := make(chan struct{})
	m.stopTicker = stop
	interval := time.Duration(m.cfg.CheckIntervalHours) * time.Hour

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := m.Check(context.Background()); err != nil {
					logging.Warnf("updater: background check: %v", err)
				}
			case <-stop:
				return
			}
		}
	}()
}

func (m *Manager) stopTickerLocked() {
	if m.stopTicker != nil {
		close(m.stopTicker)
		m.stopTicker = nil
	}
}

// Check fetches the manifest and compares it against the running version.
// If a cycle is already in flight the call is a no-op returning the current
// session unchanged. A manifest without an entry for this platform means
// up to date, not an error.
func (m *Manager) Check(ctx context.Context) (*StatusInfo, error) {
	m.mu.Lock()
	if !m.sess.status.canStartCheck() {
		info := m.snapshotLocked()
		m.mu.Unlock()
		return info, nil
	}
	m.sess = session{status: StatusChecking}
	cfg := m.cfg
	m.mu.Unlock()

	manifest, err := fetchManifest(ctx, m.client, cfg.ManifestURL, m.version)
	if err != nil {
		return m.fail(err)
	}

	entry, ok := manifest.Platforms[m.platform]
	if !ok || !isNewer(normalizeVersion(manifest.Version), normalizeVersion(m.version)) {
		m.mu.Lock()
		m.sess.status = StatusUpToDate
		info := m.snapshotLocked()
		m.mu.Unlock()
		m.events.Emit(events.TopicUpdateNotAvailable, nil)
		return info, nil
	}

	m.mu.Lock()
	m.sess.status = StatusAvailable
	m.sess.target = manifest.Version
	m.sess.notes = manifest.Notes
	m.sess.date = manifest.Date
	m.sess.entry = entry
	info := m.snapshotLocked()
	m.mu.Unlock()

	m.events.Emit(events.TopicUpdateAvailable, AvailableEvent{
		Version:   manifest.Version,
		Notes:     manifest.Notes,
		NotesHTML: markdown.Render(manifest.Notes),
		Date:      manifest.Date,
	})
	if cfg.ShowNotifications {
		notify.Send("Update available", fmt.Sprintf("Vibing %s is ready to download", manifest.Version))
	}
	if cfg.AutoDownload {
		go func() {
			if _, err := m.Download(context.Background()); err != nil {
				logging.Warnf("updater: auto-download: %v", err)
			}
		}()
	}
	return info, nil
}

// Download streams the platform artifact, emits throttled progress events,
// and verifies hash and signature before advancing to Downloaded. A failed
// verification discards the artifact and moves the session to Error. Calling
// while a download is already running or finished is a no-op.
func (m *Manager) Download(ctx context.Context) (*StatusInfo, error) {
	m.mu.Lock()
	if m.sess.status != StatusAvailable {
		info := m.snapshotLocked()
		status := m.sess.status
		m.mu.Unlock()
		if status == StatusDownloading || status == StatusDownloaded || status == StatusInstalling {
			return info, nil
		}
		return info, fmt.Errorf("updater: no update available to download")
	}
	m.sess.status = StatusDownloading
	entry := m.sess.entry
	target := m.sess.target
	m.mu.Unlock()

	path, err := downloadArtifact(ctx, m.client, entry.URL, entry.Size, func(downloaded, total int64) {
		m.mu.Lock()
		m.sess.downloaded = downloaded
		m.sess.total = total
		m.mu.Unlock()

		var pct float64
		if total > 0 {
			pct = float64(downloaded) / float64(total) * 100
		}
		m.events.Emit(events.TopicUpdateProgress, ProgressEvent{
			Downloaded: downloaded,
			Total:      total,
			Percentage: pct,
		})
	})
	if err != nil {
		return m.fail(err)
	}

	if err := verifyArtifact(path, entry, m.pubKey); err != nil {
		os.Remove(path)
		return m.fail(err)
	}

	m.mu.Lock()
	m.sess.status = StatusDownloaded
	m.sess.artifact = path
	m.sess.verified = true
	autoInstall := m.cfg.AutoInstall
	info := m.snapshotLocked()
	m.mu.Unlock()

	m.events.Emit(events.TopicUpdateDownloaded, DownloadedEvent{Version: target})
	if autoInstall {
		go func() {
			if err := m.Install(); err != nil {
				logging.Errorf("updater: auto-install: %v", err)
			}
		}()
	}
	return info, nil
}

// Install applies the verified artifact and restarts the process. Only legal
// from Downloaded with a verified artifact; anything else is an error. On
// success this call does not return.
func (m *Manager) Install() error {
	m.mu.Lock()
	if m.sess.status != StatusDownloaded || !m.sess.verified {
		m.mu.Unlock()
		return fmt.Errorf("updater: no verified update ready to install")
	}
	m.sess.status = StatusInstalling
	path := m.sess.artifact
	target := m.sess.target
	m.mu.Unlock()

	m.events.Emit(events.TopicUpdateInstalling, InstallingEvent{Version: target})

	if err := m.applyFn(path); err != nil {
		m.mu.Lock()
		m.sess.status = StatusError
		m.sess.err = err.Error()
		m.mu.Unlock()
		m.events.Emit(events.TopicUpdateError, ErrorEvent{Message: err.Error()})
		return fmt.Errorf("updater: install: %w", err)
	}
	return nil
}

// Status returns a snapshot of the current session.
func (m *Manager) Status() *StatusInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Available reports whether a newer version is known, and which one.
func (m *Manager) Available() (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.sess.status {
	case StatusAvailable, StatusDownloading, StatusDownloaded, StatusInstalling:
		return true, m.sess.target
	}
	return false, ""
}

func (m *Manager) fail(err error) (*StatusInfo, error) {
	m.mu.Lock()
	m.sess.status = StatusError
	m.sess.err = err.Error()
	info := m.snapshotLocked()
	m.mu.Unlock()
	m.events.Emit(events.TopicUpdateError, ErrorEvent{Message: err.Error()})
	return info, err
}

func (m *Manager) snapshotLocked() *StatusInfo {
	info := &StatusInfo{
		Status:         m.sess.status,
		CurrentVersion: m.version,
		LatestVersion:  m.sess.target,
		Notes:          m.sess.notes,
		Date:           m.sess.date,
		Downloaded:     m.sess.downloaded,
		Total:          m.sess.total,
		Error:          m.sess.err,
	}
	if m.sess.notes != "" {
		info.NotesHTML = markdown.Render(m.sess.notes)
	}
	return info
}
