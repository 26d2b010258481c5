package main

import (
	"os"

	"github.com/rovshanmuradov/hyperbet/cmd/hyperbet/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
