// Package main provides bookshelfctl, the operator tool for a Bookshelf
// data directory: account creation, library export and import, and
// search index maintenance. Run it while the server is stopped.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
