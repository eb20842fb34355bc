package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	cli "github.com/vibing2/vibing-desktop/cmd/vibing"
)

func main() {
	// Best-effort .env load for development; production reads the YAML config.
	_ = godotenv.Load()

	rootCmd := cli.SetupRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
