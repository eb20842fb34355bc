// Package svc holds the shared application state. One ServiceContext is
// constructed at startup and passed explicitly to every command handler and
// background task; there is no global state.
package svc

import (
	"database/sql"
	"sync"

	"github.com/vibing2/vibing-desktop/internal/config"
	"github.com/vibing2/vibing-desktop/internal/db"
	"github.com/vibing2/vibing-desktop/internal/defaults"
	"github.com/vibing2/vibing-desktop/internal/events"
	"github.com/vibing2/vibing-desktop/internal/realtime"
	"github.com/vibing2/vibing-desktop/internal/store"
	"github.com/vibing2/vibing-desktop/internal/updater"
)

// ServiceContext wires the engine together: one pooled database handle, one
// event-emission handle, and the components built on top of them.
type ServiceContext struct {
	Config   *config.Config
	DB       *sql.DB
	Projects *store.Projects
	Settings *store.SettingsStore
	Events   *events.Subject
	Hub      *realtime.Hub
	Updates  *updater.Manager
	Version  string

	mu          sync.Mutex
	trayRefresh func()
	trayBadge   func(int)
	unbridge    func()
}

// New opens the database, runs migrations, and builds the component graph.
// Project mutations automatically refresh the tray via the store observer.
func New(cfg *config.Config, version string) (*ServiceContext, error) {
	dbPath, err := defaults.DBPath()
	if err != nil {
		return nil, err
	}
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}

	subject := events.NewSubject()
	hub := realtime.NewHub()

	s := &ServiceContext{
		Config:   cfg,
		DB:       database,
		Projects: store.NewProjects(database),
		Settings: store.NewSettings(database),
		Events:   subject,
		Hub:      hub,
		Updates:  updater.New(version, cfg.Update, subject),
		Version:  version,
		unbridge: hub.Bridge(subject),
	}
	s.Projects.OnMutate(s.RefreshTray)
	return s, nil
}

// SetTrayHooks installs the native tray callbacks. Headless runs never call
// this; the tray commands are then no-ops.
func (s *ServiceContext) SetTrayHooks(refresh func(), badge func(int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trayRefresh = refresh
	s.trayBadge = badge
}

// RefreshTray rebuilds the tray menu if a tray is attached.
func (s *ServiceContext) RefreshTray() {
	s.mu.Lock()
	refresh := s.trayRefresh
	s.mu.Unlock()
	if refresh != nil {
		refresh()
	}
}

// SetTrayBadge sets or clears the tray badge if a tray is attached.
func (s *ServiceContext) SetTrayBadge(n int) {
	s.mu.Lock()
	badge := s.trayBadge
	s.mu.Unlock()
	if badge != nil {
		badge(n)
	}
}

// Close tears the context down in dependency order.
func (s *ServiceContext) Close() error {
	s.Updates.Stop()
	if s.unbridge != nil {
		s.unbridge()
	}
	s.Hub.Close()
	s.Events.Close()
	return s.DB.Close()
}
