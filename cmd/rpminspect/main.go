// Command rpminspect is the CLI entrypoint: it builds the cobra command
// tree internal/cmd assembles and runs it through fang for styled
// help/usage/error rendering, matching the teacher's cmd/nfpm/main.go
// shape (a one-line delegation to the command package) while swapping
// cobra's bare Execute for fang's wrapper, per the CLI's styling
// requirement.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/rpminspect/rpminspect/internal/cmd"
)

var version = "dev"

func main() {
	root := cmd.NewRootCommand(version, os.Exit)

	if err := fang.Execute(context.Background(), root); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(cmd.ExitCodeForError(err))
	}
}
