package cli

// AppVersion is the running release, overridden at build time:
//
//	go build -ldflags "-X github.com/vibing2/vibing-desktop/cmd/vibing.AppVersion=1.2.3"
var AppVersion = "0.1.0"

// Shared CLI flags
var (
	cfgFile  string
	headless bool
)
