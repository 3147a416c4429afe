package main

import (
	"fmt"
	"os"
)

func main() {
	os.Exit(run())
}

// run executes the CLI and maps its outcome to a process exit code.
func run() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "advisor: %v\n", err)
		return 1
	}
	return 0
}
