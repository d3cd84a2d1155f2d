package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	appiCli "github.com/urfave/cli/v3"

	"github.com/chmouel/gaiacommit/internal/app"
	"github.com/chmouel/gaiacommit/internal/buildinfo"
	"github.com/chmouel/gaiacommit/internal/cli"
	"github.com/chmouel/gaiacommit/internal/config"
	"github.com/chmouel/gaiacommit/internal/gaia"
	"github.com/chmouel/gaiacommit/internal/git"
	"github.com/chmouel/gaiacommit/internal/history"
	log "github.com/chmouel/gaiacommit/internal/log"
	"github.com/chmouel/gaiacommit/internal/metrics"
	"github.com/chmouel/gaiacommit/internal/tracing"
)

var (
	getwdFunc   = os.Getwd
	openGitFunc = func(dir string, stderr io.Writer) (app.GitClient, error) {
		svc, err := git.Open(dir, stderr)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
	newPrompterFunc = func(cfg *config.AppConfig, root string, preview cli.PreviewFunc) app.Prompter {
		return cli.NewPrompter(cfg, root, preview)
	}
)

const shutdownTimeout = 5 * time.Second

func stdout(cmd *appiCli.Command) io.Writer { return cmd.Root().Writer }
func stderr(cmd *appiCli.Command) io.Writer { return cmd.Root().ErrWriter }

// loadConfig merges every configuration layer and opens the debug log.
func loadConfig(cmd *appiCli.Command) (*config.AppConfig, error) {
	repoPath, err := getwdFunc()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := config.Load(config.LoadOptions{
		ConfigPath: cmd.String("config-file"),
		RepoPath:   repoPath,
		Overrides:  configOverrides(cmd),
	})
	if err != nil {
		_ = log.SetFile("")
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := log.SetFile(cfg.DebugLog); err != nil {
		fmt.Fprintf(stderr(cmd), "Error opening debug log file %q: %v\n", cfg.DebugLog, err)
	}
	log.Printf("gaiacommit %s starting in %s", buildinfo.Version(), repoPath)
	return cfg, nil
}

func closeLog(cmd *appiCli.Command) {
	if err := log.Close(); err != nil {
		fmt.Fprintf(stderr(cmd), "Error closing debug log: %v\n", err)
	}
}

func newGaiaClient(cfg *config.AppConfig) *gaia.Client {
	return gaia.New(gaia.Options{
		DirectoryURL: cfg.DirectoryURL,
		ModelFilter:  cfg.ModelFilter,
		Timeout:      cfg.RequestTimeout,
		Attempts:     cfg.RetryAttempts,
		BackoffLimit: cfg.RetryBackoffLimit,
		SystemPrompt: cfg.SystemPrompt,
	})
}

// startTracing never fails a run: a broken exporter only costs the spans.
func startTracing(ctx context.Context, cmd *appiCli.Command, cfg *config.AppConfig) func() {
	shutdown, err := tracing.Setup(ctx, tracing.Config{
		Enabled:  cfg.TracingEnabled,
		Endpoint: cfg.TracingEndpoint,
		Version:  buildinfo.Version(),
	})
	if err != nil {
		log.Errorf("tracing disabled: %v", err)
		fmt.Fprintf(stderr(cmd), "Error setting up tracing: %v\n", err)
		return func() {}
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Errorf("tracing shutdown: %v", err)
		}
	}
}

func openHistory(ctx context.Context, cmd *appiCli.Command, cfg *config.AppConfig) *history.Store {
	if !cfg.History || cfg.HistoryFile == "" {
		return nil
	}
	store, err := history.Open(ctx, cfg.HistoryFile)
	if err != nil {
		log.Errorf("history disabled: %v", err)
		fmt.Fprintf(stderr(cmd), "Error opening history: %v\n", err)
		return nil
	}
	return store
}

func writeMetrics(cmd *appiCli.Command, cfg *config.AppConfig) {
	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		log.Errorf("metrics: %v", err)
		fmt.Fprintf(stderr(cmd), "Error writing metrics: %v\n", err)
	}
}

// withRunner builds a Runner for the current repository and hands it to fn.
// Errors before fn runs are configuration errors; fn reports its own.
func withRunner(ctx context.Context, cmd *appiCli.Command, fn func(context.Context, *app.Runner) app.Result) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer closeLog(cmd)

	stopTracing := startTracing(ctx, cmd, cfg)
	defer stopTracing()

	dir, err := getwdFunc()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	repo, err := openGitFunc(dir, stderr(cmd))
	if err != nil {
		return err
	}

	root := dir
	if r, ok := repo.(interface{ Root() string }); ok {
		root = r.Root()
	}
	runner := &app.Runner{
		Git:    repo,
		Gaia:   newGaiaClient(cfg),
		Prompt: newPrompterFunc(cfg, root, repo.StagedDiff),
		Out:    stdout(cmd),
		Err:    stderr(cmd),
		Remote: cfg.Remote,
		Branch: cfg.PushBranch,
	}
	if store := openHistory(ctx, cmd, cfg); store != nil {
		defer func() { _ = store.Close() }()
		runner.History = store
	}

	res := fn(ctx, runner)
	log.Printf("run finished: outcome=%s", res.Outcome)
	writeMetrics(cmd, cfg)
	return nil
}

// runPipeline is the default action: stage, describe, then stop, commit or push.
func runPipeline(ctx context.Context, cmd *appiCli.Command) error {
	if cmd.Args().Present() {
		return fmt.Errorf("unexpected argument %q", cmd.Args().First())
	}
	return withRunner(ctx, cmd, func(ctx context.Context, r *app.Runner) app.Result {
		return r.Run(ctx)
	})
}

func printCommand() *appiCli.Command {
	return &appiCli.Command{
		Name:  "print",
		Usage: "Print a generated message for a staged file without committing",
		Flags: []appiCli.Flag{
			&appiCli.BoolFlag{
				Name:  "shell",
				Usage: "Escape backslashes, quotes and backticks for use inside a double-quoted shell string",
			},
		},
		Action: func(ctx context.Context, cmd *appiCli.Command) error {
			shell := cmd.Bool("shell")
			return withRunner(ctx, cmd, func(ctx context.Context, r *app.Runner) app.Result {
				return r.Print(ctx, shell)
			})
		},
	}
}

func historyCommand() *appiCli.Command {
	return &appiCli.Command{
		Name:  "history",
		Usage: "List recently generated messages",
		Flags: []appiCli.Flag{
			&appiCli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Value:   20,
				Usage:   "Number of entries to show, 0 for all",
			},
			&appiCli.BoolFlag{
				Name:  "json",
				Usage: "Output as JSON",
			},
		},
		Action: handleHistoryAction,
	}
}

// historyJSON is the JSON output format for a history entry.
type historyJSON struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	File      string `json:"file"`
	Node      string `json:"node"`
	Model     string `json:"model"`
	Message   string `json:"message"`
	Outcome   string `json:"outcome"`
}

func handleHistoryAction(ctx context.Context, cmd *appiCli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer closeLog(cmd)

	if cfg.HistoryFile == "" {
		return errors.New("history_file is not set")
	}
	store, err := history.Open(ctx, cfg.HistoryFile)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.List(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]historyJSON, 0, len(entries))
		for _, e := range entries {
			out = append(out, historyJSON{
				ID:        e.ID.String(),
				CreatedAt: e.CreatedAt.Format(time.RFC3339),
				File:      e.File,
				Node:      e.Node,
				Model:     e.Model,
				Message:   e.Message,
				Outcome:   e.Outcome,
			})
		}
		enc := json.NewEncoder(stdout(cmd))
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	w := tabwriter.NewWriter(stdout(cmd), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tOUTCOME\tFILE\tMODEL\tSUBJECT")
	for _, e := range entries {
		subject, _, _ := strings.Cut(e.Message, "\n")
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Outcome, e.File, e.Model, subject)
	}
	return w.Flush()
}

func nodesCommand() *appiCli.Command {
	return &appiCli.Command{
		Name:  "nodes",
		Usage: "List the nodes a run may pick from",
		Flags: []appiCli.Flag{
			&appiCli.BoolFlag{
				Name:  "json",
				Usage: "Output as JSON",
			},
		},
		Action: handleNodesAction,
	}
}

func handleNodesAction(ctx context.Context, cmd *appiCli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer closeLog(cmd)

	nodes, err := newGaiaClient(cfg).EligibleNodes(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(stdout(cmd))
		enc.SetIndent("", "  ")
		return enc.Encode(nodes)
	}

	w := tabwriter.NewWriter(stdout(cmd), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SUBDOMAIN\tMODEL\tSTATUS")
	for _, n := range nodes {
		fmt.Fprintf(w, "%s\t%s\t%s\n", n.Subdomain, n.ModelName, n.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(stderr(cmd), "%d eligible node(s) serving %q\n", len(nodes), cfg.ModelFilter)
	return nil
}

func versionCommand() *appiCli.Command {
	return &appiCli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(_ context.Context, cmd *appiCli.Command) error {
			fmt.Fprintln(stdout(cmd), buildinfo.String())
			return nil
		},
	}
}
