package events

// Event topics consumed by the UI layer. The websocket bridge forwards each
// as {"type": topic, "data": payload}.
const (
	TopicUpdateAvailable    = "update-available"
	TopicUpdateProgress     = "update-download-progress"
	TopicUpdateDownloaded   = "update-downloaded"
	TopicUpdateInstalling   = "update-installing"
	TopicUpdateError        = "update-error"
	TopicUpdateNotAvailable = "update-not-available"
	TopicLoadProject        = "load-project"

	// Tray navigation topics.
	TopicNewProject   = "new-project"
	TopicOpenSettings = "open-settings"
	TopicOpenAbout    = "open-about"
)

// LoadProjectEvent asks the UI to navigate to a project (tray click).
type LoadProjectEvent struct {
	ProjectID string `json:"project_id"`
}
