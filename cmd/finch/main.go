// Package main provides the entry point for the finch CLI.
package main

import (
	"os"

	"github.com/rahulmohankumar24/finch-demo/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
