// Command restock runs the product restock API and its maintenance tasks.
package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
