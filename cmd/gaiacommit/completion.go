package main

import (
	"context"
	"fmt"
	"os"

	appiCli "github.com/urfave/cli/v3"

	"github.com/chmouel/gaiacommit/internal/completion"
)

// completionArgs returns the command line of a completion request. The
// shell passes the words before the cursor followed by
// --generate-shell-completion and filters the candidates itself.
var completionArgs = func() []string { return os.Args }

// previousWord is the word right before the one being completed.
func previousWord(args []string) string {
	if len(args) < 3 {
		return ""
	}
	return args[len(args)-2]
}

// completeGlobal completes values for -C, --theme and --branch, and
// otherwise lists subcommands and global flags.
func completeGlobal(_ context.Context, cmd *appiCli.Command) {
	w := cmd.Root().Writer

	switch prev := previousWord(completionArgs()); prev {
	case "-C", "--config":
		for _, s := range completion.SuggestConfig("") {
			fmt.Fprintln(w, s)
		}
		return
	default:
		if values := completion.FlagValues(prev); values != nil {
			for _, v := range values {
				fmt.Fprintln(w, v)
			}
			return
		}
	}

	for _, sub := range cmd.Commands {
		if !sub.Hidden {
			fmt.Fprintf(w, "%s:%s\n", sub.Name, sub.Usage)
		}
	}
	for _, f := range completion.GetFlags() {
		fmt.Fprintf(w, "--%s:%s\n", f.Name, f.Description)
	}
}
