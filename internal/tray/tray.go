//go:build desktop

package tray

import (
	"context"
	"fmt"
	"time"

	"github.com/wailsapp/wails/v3/pkg/application"

	"github.com/vibing2/vibing-desktop/internal/events"
	"github.com/vibing2/vibing-desktop/internal/logging"
	"github.com/vibing2/vibing-desktop/internal/store"
	"github.com/vibing2/vibing-desktop/internal/updater"
)

// Synchronizer owns the native tray icon and rebuilds its menu from the
// project store. It never polls; the store's mutation observer and the
// explicit refresh command drive it.
type Synchronizer struct {
	app      *application.App
	window   *application.WebviewWindow
	systray  *application.SystemTray
	projects *store.Projects
	subject  *events.Subject
	updates  *updater.Manager
	version  string
}

// New creates the tray icon and installs the initial menu. Call Refresh after
// wiring it as the store's mutation observer.
func New(app *application.App, window *application.WebviewWindow, projects *store.Projects, subject *events.Subject, updates *updater.Manager, version string, icon []byte) *Synchronizer {
	s := &Synchronizer{
		app:      app,
		window:   window,
		systray:  app.SystemTray.New(),
		projects: projects,
		subject:  subject,
		updates:  updates,
		version:  version,
	}
	if len(icon) > 0 {
		s.systray.SetIcon(icon)
	}
	s.systray.SetLabel("")
	s.Refresh()
	return s
}

// Refresh re-queries the store and replaces the tray menu.
func (s *Synchronizer) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	summaries, err := s.projects.RecentProjects(ctx, maxRecent)
	if err != nil {
		logging.Errorf("tray: list recent projects: %v", err)
		summaries = nil
	}
	s.systray.SetMenu(s.buildMenu(BuildModel(summaries)))
}

// SetBadge shows a small unread count next to the tray icon. Platforms
// without badge support fall back to label text; zero clears it.
func (s *Synchronizer) SetBadge(n int) {
	if n <= 0 {
		s.systray.SetLabel("")
		return
	}
	s.systray.SetLabel(fmt.Sprintf("%d", n))
}

func (s *Synchronizer) buildMenu(model Model) *application.Menu {
	menu := s.app.NewMenu()

	menu.Add("Show Window").OnClick(func(_ *application.Context) {
		s.window.Show()
		s.window.Focus()
	})
	menu.Add("Hide Window").OnClick(func(_ *application.Context) {
		s.window.Hide()
	})
	menu.AddSeparator()

	menu.Add("Create New Project").OnClick(func(_ *application.Context) {
		s.window.Show()
		s.window.Focus()
		s.subject.Emit(events.TopicNewProject, nil)
	})

	recent := menu.AddSubmenu("Recent Projects")
	if len(model.Recent) == 0 {
		empty := recent.Add("No projects yet")
		empty.SetEnabled(false)
	}
	for _, entry := range model.Recent {
		projectID := entry.ProjectID
		recent.Add(entry.Label).OnClick(func(_ *application.Context) {
			s.window.Show()
			s.window.Focus()
			s.subject.Emit(events.TopicLoadProject, events.LoadProjectEvent{ProjectID: projectID})
		})
	}
	menu.AddSeparator()

	menu.Add("Settings").OnClick(func(_ *application.Context) {
		s.window.Show()
		s.window.Focus()
		s.subject.Emit(events.TopicOpenSettings, nil)
	})

	menu.Add("Check for Updates").OnClick(func(_ *application.Context) {
		go func() {
			if _, err := s.updates.Check(context.Background()); err != nil {
				logging.Warnf("tray: update check: %v", err)
			}
		}()
	})

	menu.Add("About Vibing " + s.version).OnClick(func(_ *application.Context) {
		s.window.Show()
		s.window.Focus()
		s.subject.Emit(events.TopicOpenAbout, nil)
	})
	menu.AddSeparator()

	menu.Add("Quit Vibing").OnClick(func(_ *application.Context) {
		s.app.Quit()
	})

	return menu
}
