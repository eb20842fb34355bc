//go:build desktop

package cli

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v3/pkg/application"
	wailsevents "github.com/wailsapp/wails/v3/pkg/events"

	"github.com/vibing2/vibing-desktop/internal/db/migrations"
	"github.com/vibing2/vibing-desktop/internal/logging"
	"github.com/vibing2/vibing-desktop/internal/server"
	"github.com/vibing2/vibing-desktop/internal/tray"
)

// runApp starts the engine plus the native window and tray.
func runApp() error {
	// Quiet startup for clean desktop output
	logging.Disable()
	migrations.QuietMode = true

	svcCtx, lock, err := initEngine()
	if err != nil {
		return err
	}
	defer releaseLock(lock)
	defer svcCtx.Close()

	serverURL := fmt.Sprintf("http://%s:%d", svcCtx.Config.Server.Host, svcCtx.Config.Server.Port)

	wailsApp := application.New(application.Options{
		Name: "Vibing",
		Mac: application.MacOptions{
			// Keep running in the tray when the last window closes
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
		Windows: application.WindowsOptions{
			DisableQuitOnLastWindowClosed: true,
		},
		Linux: application.LinuxOptions{
			DisableQuitOnLastWindowClosed: true,
			ProgramName:                   "vibing",
		},
	})

	window := wailsApp.Window.NewWithOptions(application.WebviewWindowOptions{
		Name:      "main",
		Title:     "Vibing",
		Width:     1280,
		Height:    860,
		MinWidth:  800,
		MinHeight: 600,
		URL:       serverURL,
	})

	// Hide on close instead of destroying the window (minimize to tray)
	window.RegisterHook(wailsevents.Common.WindowClosing, func(event *application.WindowEvent) {
		window.Hide()
		event.Cancel()
	})

	sync := tray.New(wailsApp, window, svcCtx.Projects, svcCtx.Events, svcCtx.Updates, AppVersion, nil)
	svcCtx.SetTrayHooks(sync.Refresh, sync.SetBadge)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Command API and event feed run alongside the native event loop
	go func() {
		if err := server.New(svcCtx).Run(ctx); err != nil {
			fmt.Printf("server error: %v\n", err)
			wailsApp.Quit()
		}
	}()

	svcCtx.Updates.Start()

	return wailsApp.Run()
}
