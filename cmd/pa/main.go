// Command pa runs path and file operations from the shell.
package main

import (
	"os"

	"github.com/jmgilman/go/pa/internal/cli"
)

func main() {
	os.Exit(cli.New().Execute(os.Args[1:]))
}
