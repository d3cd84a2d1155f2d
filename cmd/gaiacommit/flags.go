package main

import (
	appiCli "github.com/urfave/cli/v3"

	"github.com/chmouel/gaiacommit/internal/config"
)

// globalFlags returns the flags shared by every command.
// Note: --version is provided automatically by urfave/cli via Command.Version
func globalFlags() []appiCli.Flag {
	return []appiCli.Flag{
		&appiCli.StringFlag{
			Name:  "config-file",
			Usage: "Path to configuration file",
		},
		&appiCli.StringSliceFlag{
			Name:    "config",
			Aliases: []string{"C"},
			Usage:   "Override config values (repeatable): --config=gc.key=value",
		},
		&appiCli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&appiCli.StringFlag{
			Name:    "theme",
			Aliases: []string{"t"},
			Usage:   "Override the UI theme",
		},
		&appiCli.StringFlag{
			Name:  "model-filter",
			Usage: "Only use nodes whose model name contains this text",
		},
		&appiCli.StringFlag{
			Name:  "remote",
			Usage: "Remote to push to",
		},
		&appiCli.StringFlag{
			Name:  "branch",
			Usage: "Branch to push, HEAD for the current one",
		},
	}
}

// flagKeys maps dedicated flags to the config key they override.
var flagKeys = []struct{ flag, key string }{
	{"debug-log", "debug_log"},
	{"theme", "theme"},
	{"model-filter", "model_filter"},
	{"remote", "remote"},
	{"branch", "push_branch"},
}

// configOverrides returns the -C values followed by the dedicated flags, so
// a dedicated flag wins over a -C entry for the same key.
func configOverrides(cmd *appiCli.Command) []string {
	overrides := append([]string(nil), cmd.StringSlice("config")...)
	for _, fk := range flagKeys {
		if !cmd.IsSet(fk.flag) {
			continue
		}
		overrides = append(overrides, config.Override(fk.key, cmd.String(fk.flag)))
	}
	return overrides
}
