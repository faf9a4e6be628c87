package main

import (
	"os"

	"github.com/nexuslabs/nexus/internal/cmd"
	"github.com/nexuslabs/nexus/internal/style"
)

func main() {
	if err := cmd.Execute(); err != nil {
		style.PrintError("%v", err)
		os.Exit(1)
	}
}
