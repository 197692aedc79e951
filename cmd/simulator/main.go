package main

import (
	"os"

	"github.com/stringhandler/dansim/internal/cli"
)

func main() {
	if err := cli.NewCLI().Execute(); err != nil {
		os.Exit(1)
	}
}
