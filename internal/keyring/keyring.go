// Package keyring stores the API key in the OS keychain so it never sits in
// the database in plain text. Falls back to the database when no keychain is
// available (headless Linux, CI).
package keyring

import (
	"os"

	zkr "github.com/zalando/go-keyring"
)

const (
	serviceName = "vibing"
	accountName = "anthropic-api-key"
)

// GetAPIKey retrieves the API key from the OS keychain.
func GetAPIKey() (string, error) {
	return zkr.Get(serviceName, accountName)
}

// SetAPIKey stores the API key in the OS keychain.
func SetAPIKey(key string) error {
	return zkr.Set(serviceName, accountName, key)
}

// DeleteAPIKey removes the API key from the OS keychain.
func DeleteAPIKey() error {
	return zkr.Delete(serviceName, accountName)
}

// Available returns true if the OS keychain is functional.
// Returns false if VIBING_KEYRING_DISABLED=1 is set (headless/CI/Docker).
// Otherwise probes the keychain with a test write/delete cycle.
func Available() bool {
	if os.Getenv("VIBING_KEYRING_DISABLED") == "1" {
		return false
	}
	testService := "vibing-keyring-probe"
	testAccount := "probe"
	if err := zkr.Set(testService, testAccount, "ok"); err != nil {
		return false
	}
	_ = zkr.Delete(testService, testAccount)
	return true
}
