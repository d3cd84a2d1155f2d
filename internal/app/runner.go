// Package app runs one gaiacommit session: stage, pick a file, ask a node for
// a commit message, then stop, commit or push as the user decides.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/chmouel/gaiacommit/internal/cli"
	"github.com/chmouel/gaiacommit/internal/gaia"
	"github.com/chmouel/gaiacommit/internal/git"
	"github.com/chmouel/gaiacommit/internal/history"
	log "github.com/chmouel/gaiacommit/internal/log"
	"github.com/chmouel/gaiacommit/internal/metrics"
	"github.com/chmouel/gaiacommit/internal/sanitize"
	"github.com/chmouel/gaiacommit/internal/tracing"
)

var (
	// ErrNoChanges is returned when nothing is staged after `git add .`.
	ErrNoChanges = errors.New("no changes to commit")

	// ErrEmptyMessage is returned when the model answer is empty once cleaned.
	ErrEmptyMessage = errors.New("the model returned an empty commit message")
)

// Outcome is how a run ended.
type Outcome string

// Run outcomes.
const (
	OutcomeStopped   Outcome = "stopped"
	OutcomeCommitted Outcome = "committed"
	OutcomePushed    Outcome = "pushed"
	OutcomeReset     Outcome = "reset"
	OutcomeNothing   Outcome = "nothing"
	OutcomeFailed    Outcome = "failed"
)

// GitClient is the subset of git.Service a run needs.
type GitClient interface {
	StageAll(ctx context.Context) error
	AddAll(ctx context.Context) error
	StagedFiles(ctx context.Context) ([]string, error)
	StagedDiff(ctx context.Context, path string) (string, error)
	Reset(ctx context.Context) error
	Commit(ctx context.Context, message string) (string, error)
	Push(ctx context.Context, remote, branch string) error
	ResolveBranch(branch string) (string, error)
}

// Generator picks a node and asks it for a message.
type Generator interface {
	PickNode(ctx context.Context) (gaia.Node, error)
	Complete(ctx context.Context, node gaia.Node, diff string) (string, error)
}

// Prompter talks to the user.
type Prompter interface {
	SelectFile(ctx context.Context, files []string) (string, error)
	Confirm(ctx context.Context, question string, def bool) (bool, error)
	ShowMessage(message string)
}

// Recorder stores generated messages.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
}

var (
	_ GitClient = (*git.Service)(nil)
	_ Generator = (*gaia.Client)(nil)
	_ Prompter  = (*cli.Prompter)(nil)
	_ Recorder  = (*history.Store)(nil)
)

// Runner wires the collaborators of a run.
type Runner struct {
	Git    GitClient
	Gaia   Generator
	Prompt Prompter
	// History is optional.
	History Recorder
	Out     io.Writer
	Err     io.Writer
	Remote  string
	// Branch is pushed to; "HEAD" means the current branch.
	Branch string
}

// Draft is a generated message before the user decides what to do with it.
type Draft struct {
	File    string
	Diff    string
	Node    gaia.Node
	Raw     string
	Message string
}

// Result summarises a run.
type Result struct {
	Outcome Outcome
	Draft   Draft
	Summary string
	Err     error
}

// Generate stages the working tree, asks which file to describe and returns
// the cleaned message for it. The index is left staged.
func (r *Runner) Generate(ctx context.Context) (Draft, error) {
	var d Draft

	if err := r.Git.StageAll(ctx); err != nil {
		if errors.Is(err, git.ErrNothingToCommit) {
			return d, fmt.Errorf("%w: %w", ErrNoChanges, err)
		}
		return d, fmt.Errorf("staging changes: %w", err)
	}

	files, err := r.Git.StagedFiles(ctx)
	if err != nil {
		return d, fmt.Errorf("listing staged files: %w", err)
	}
	if len(files) == 0 {
		return d, ErrNoChanges
	}

	d.File, err = r.Prompt.SelectFile(ctx, files)
	if err != nil {
		return d, err
	}

	d.Diff, err = r.Git.StagedDiff(ctx, d.File)
	if err != nil {
		return d, fmt.Errorf("reading diff of %s: %w", d.File, err)
	}

	d.Node, err = r.Gaia.PickNode(ctx)
	if err != nil {
		return d, err
	}
	fmt.Fprintf(r.Err, "Asking %s (%s)...\n", d.Node.Subdomain, d.Node.ModelName)

	d.Raw, err = r.Gaia.Complete(ctx, d.Node, d.Diff)
	if err != nil {
		return d, err
	}

	d.Message = sanitize.Message(d.Raw)
	if d.Message == "" {
		return d, ErrEmptyMessage
	}
	log.Printf("app: generated %d byte message for %s", len(d.Message), d.File)
	return d, nil
}

// Run executes the whole session. Every failure ends with the index reset;
// the error is reported on Err and kept in the result.
func (r *Runner) Run(ctx context.Context) Result {
	ctx, span := tracing.Tracer().Start(ctx, "gaiacommit.run")
	defer span.End()

	res := r.run(ctx)

	span.SetAttributes(attribute.String("gaiacommit.outcome", string(res.Outcome)))
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	}
	metrics.RunsTotal.WithLabelValues(string(res.Outcome)).Inc()
	r.record(ctx, res)
	return res
}

func (r *Runner) run(ctx context.Context) Result {
	draft, err := r.Generate(ctx)
	if err != nil {
		return r.fail(ctx, draft, err)
	}

	res, err := r.finish(ctx, draft)
	if err != nil {
		return r.fail(ctx, draft, err)
	}
	return res
}

// Print generates a message, writes it to Out and resets the index. With
// shell set the message is escaped for use inside a quoted shell string.
func (r *Runner) Print(ctx context.Context, shell bool) Result {
	res := r.print(ctx, shell)
	metrics.RunsTotal.WithLabelValues(string(res.Outcome)).Inc()
	r.record(ctx, res)
	return res
}

func (r *Runner) print(ctx context.Context, shell bool) Result {
	draft, err := r.Generate(ctx)
	if err != nil {
		return r.fail(ctx, draft, err)
	}

	message := draft.Message
	if shell {
		message = sanitize.ShellMessage(draft.Raw)
	}
	fmt.Fprintln(r.Out, message)

	if err := r.Git.Reset(ctx); err != nil {
		return r.fail(ctx, draft, err)
	}
	return Result{Outcome: OutcomeReset, Draft: draft}
}

// fail is the single error handler: report, reset the index, carry on.
func (r *Runner) fail(ctx context.Context, draft Draft, err error) Result {
	res := Result{Outcome: OutcomeFailed, Draft: draft, Err: err}

	switch {
	case errors.Is(err, ErrNoChanges):
		res.Outcome = OutcomeNothing
		fmt.Fprintln(r.Out, "No changes to commit")
	case errors.Is(err, cli.ErrSelectionCancelled):
		res.Outcome = OutcomeStopped
		fmt.Fprintln(r.Err, "Cancelled.")
	default:
		log.Errorf("run failed: %v", err)
		fmt.Fprintf(r.Err, "Error: %v\n", err)
	}

	// a cancelled context would also kill the reset
	if resetErr := r.Git.Reset(context.WithoutCancel(ctx)); resetErr != nil {
		log.Errorf("reset after failure: %v", resetErr)
		fmt.Fprintf(r.Err, "Error: could not reset the index: %v\n", resetErr)
	}
	return res
}

func (r *Runner) record(ctx context.Context, res Result) {
	if r.History == nil || strings.TrimSpace(res.Draft.Message) == "" {
		return
	}
	_, err := r.History.Record(context.WithoutCancel(ctx), history.Entry{
		File:    res.Draft.File,
		Node:    res.Draft.Node.Subdomain,
		Model:   res.Draft.Node.ModelName,
		Message: res.Draft.Message,
		Outcome: string(res.Outcome),
	})
	if err != nil {
		log.Errorf("recording history: %v", err)
	}
}
