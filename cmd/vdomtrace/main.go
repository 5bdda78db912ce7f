// Command vdomtrace replays virtual DOM teardown scenarios.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/vdom/cmd/vdomtrace/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
