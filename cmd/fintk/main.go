package main

import (
	"os"

	"github.com/fintk-dev/fintk/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
