// tt is the CLI for tasktree, a hierarchical task list kept in the repo.
package main

import (
	"fmt"
	"os"

	"tasktree/internal/cmd"
)

var (
	run    = func() error { return cmd.Execute() }
	osExit = os.Exit
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		osExit(1)
	}
}
