// Command mage-rules runs the rules engine from the command line: simulated
// matches, Swiss events between decks, and card catalog listings.
package main

import (
	"fmt"
	"os"
)

var version = "dev" // set via ldflags during build

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
