// Package main is the entry point for the gaiacommit command.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	appiCli "github.com/urfave/cli/v3"

	"github.com/chmouel/gaiacommit/internal/buildinfo"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	buildinfo.Set(version, commit, date, builtBy)
	buildinfo.Enrich()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp().Run(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newApp() *appiCli.Command {
	return &appiCli.Command{
		Name:                  "gaiacommit",
		Usage:                 "Write a commit message for a staged file with a Gaia node",
		Version:               buildinfo.Version(),
		EnableShellCompletion: true,
		Flags:                 globalFlags(),
		Commands: []*appiCli.Command{
			printCommand(),
			historyCommand(),
			nodesCommand(),
			versionCommand(),
		},
		Action:        runPipeline,
		ShellComplete: completeGlobal,
	}
}
