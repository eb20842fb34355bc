package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/vibing2/vibing-desktop/internal/config"
	"github.com/vibing2/vibing-desktop/internal/db/migrations"
	"github.com/vibing2/vibing-desktop/internal/events"
	"github.com/vibing2/vibing-desktop/internal/logging"
	"github.com/vibing2/vibing-desktop/internal/store"
	"github.com/vibing2/vibing-desktop/internal/svc"
)

func init() {
	logging.Disable()
	migrations.QuietMode = true
}

func newTestServer(t *testing.T) (*httptest.Server, *svc.ServiceContext) {
	t.Helper()
	t.Setenv("VIBING_TEST_DB", filepath.Join(t.TempDir(), "test.db"))
	t.Setenv("VIBING_KEYRING_DISABLED", "1")

	cfg := config.Default()
	cfg.Update.CheckOnLaunch = false
	cfg.Update.CheckIntervalHours = 0

	svcCtx, err := svc.New(&cfg, "1.2.3")
	require.NoError(t, err)
	t.Cleanup(func() { svcCtx.Close() })

	ts := httptest.NewServer(New(svcCtx).Router())
	t.Cleanup(ts.Close)
	return ts, svcCtx
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestProjectEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/projects", store.SaveProjectRequest{
		Name:        "Todo App",
		ProjectType: "web",
		Messages: []store.Message{
			{Role: "user", Content: "build me a todo app"},
			{Role: "assistant", Content: "done"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decode[map[string]string](t, resp)
	id := created["id"]
	require.NotEmpty(t, id)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/projects", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]store.Summary](t, resp)
	require.Len(t, list, 1)
	require.Equal(t, "Todo App", list[0].Name)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/projects/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	project := decode[store.Project](t, resp)
	require.Len(t, project.Messages, 2)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/projects/nope", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	errBody := decode[map[string]string](t, resp)
	require.Contains(t, errBody["error"], "project not found")

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/projects/"+id, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/projects/"+id, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestSaveProjectValidationError(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/projects", store.SaveProjectRequest{Name: ""})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestSettingsEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/settings", map[string]string{
		"theme":     "dark",
		"auto_save": "false",
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/settings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	settings := decode[store.Settings](t, resp)
	require.Equal(t, "dark", settings.Theme)
	require.False(t, settings.AutoSave)
}

func TestVersionAndHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/version", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	require.Equal(t, "1.2.3", body["version"])

	resp = doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestUpdateStatusIdle(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/updates/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status := decode[map[string]any](t, resp)
	require.Equal(t, "idle", status["status"])

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/updates/available", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	avail := decode[map[string]any](t, resp)
	require.Equal(t, false, avail["available"])
}

func TestUpdateConfigRoundTrip(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/updates/config", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cfg := decode[config.UpdateConfig](t, resp)

	cfg.AutoDownload = false
	cfg.CheckIntervalHours = 12
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/updates/config", cfg)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/updates/config", nil)
	got := decode[config.UpdateConfig](t, resp)
	require.False(t, got.AutoDownload)
	require.Equal(t, 12, got.CheckIntervalHours)
}

func TestInstallWithoutDownloadFails(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/updates/install", nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	resp.Body.Close()
}

func TestTrayEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/tray/refresh", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/tray/badge", map[string]int{"count": 3})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func TestWebsocketEventFeed(t *testing.T) {
	ts, svcCtx := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the hub a moment to register the client.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, svcCtx.Events.Emit(events.TopicLoadProject, events.LoadProjectEvent{ProjectID: "p1"}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame struct {
		Type string `json:"type"`
		Data struct {
			ProjectID string `json:"project_id"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, events.TopicLoadProject, frame.Type)
	require.Equal(t, "p1", frame.Data.ProjectID)
}
