//go:build !desktop

package cli

// Without the desktop build tag there is no native window or tray; the
// default command degrades to headless mode.
func runApp() error {
	return RunServe()
}
