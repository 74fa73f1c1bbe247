// Package main provides the entry point for the readyctl CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/readyctl/cmd/readyctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
