// Package main is the entry point for beepbeep.
package main

import (
	"os"

	"github.com/jmfallon/beepbeep/cmd/beepbeep/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
