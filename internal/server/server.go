// Package server exposes the engine's command surface over HTTP for the UI
// layer, plus the /ws event feed.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vibing2/vibing-desktop/internal/logging"
	"github.com/vibing2/vibing-desktop/internal/svc"
)

// Server hosts the local command API. It binds to loopback only; the desktop
// webview and the tray are its only intended clients.
type Server struct {
	svcCtx *svc.ServiceContext
	router chi.Router
}

// New builds the router over the shared service context.
func New(svcCtx *svc.ServiceContext) *Server {
	s := &Server{svcCtx: svcCtx}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(corsMiddleware())

	h := &handlers{svc: svcCtx}

	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/projects", h.saveProject)
		r.Get("/projects", h.listProjects)
		r.Get("/projects/{id}", h.loadProject)
		r.Delete("/projects/{id}", h.deleteProject)

		r.Put("/settings", h.saveSettings)
		r.Get("/settings", h.loadSettings)

		r.Route("/updates", func(r chi.Router) {
			r.Post("/check", h.checkUpdates)
			r.Post("/download", h.downloadUpdate)
			r.Post("/install", h.installUpdate)
			r.Get("/config", h.getUpdateConfig)
			r.Put("/config", h.setUpdateConfig)
			r.Get("/status", h.updateStatus)
			r.Get("/available", h.updateAvailable)
		})

		r.Get("/version", h.version)

		r.Post("/tray/refresh", h.trayRefresh)
		r.Put("/tray/badge", h.trayBadge)
	})

	r.Get("/ws", h.serveWS)

	s.router = r
	return s
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
// Read/write timeouts are omitted so hijacked websocket connections are not
// killed by connection deadlines; keepalive is ping/pong in the realtime pkg.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.svcCtx.Config.Server.Host, s.svcCtx.Config.Server.Port)
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     s.router,
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Infof("server: listening on http://%s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// corsMiddleware allows the local webview origins only.
func corsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && isLocalOrigin(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isLocalOrigin(origin string) bool {
	for _, prefix := range []string{"http://localhost", "http://127.0.0.1", "wails://", "file://"} {
		if len(origin) >= len(prefix) && origin[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
