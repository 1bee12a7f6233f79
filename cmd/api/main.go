package main

import (
	"fmt"
	"os"
)

// main runs the CLI: `serve` (default) boots config → store → HTTP server,
// `seed` writes the development fixtures.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
