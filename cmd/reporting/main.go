package main

import (
	"os"

	"github.com/ronitphilip/zoom-backend/internal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
