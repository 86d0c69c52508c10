package main

import (
	"os"

	"github.com/aussiebroadwan/consultboard/cmd/boardctl/commands"
	_ "github.com/joho/godotenv/autoload"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
)

func main() {
	// Errors are printed by the printer with colour formatting
	if err := commands.Execute(version + " (commit: " + commit + ")"); err != nil {
		os.Exit(1)
	}
}
