package app

import (
	"context"
	"fmt"

	log "github.com/chmouel/gaiacommit/internal/log"
)

// Questions asked once the message is shown.
const (
	QuestionStop       = "stop?"
	QuestionCommitOnly = "commit only?"
	QuestionPush       = "Do you want to push?"
)

// finish shows the message and walks the user through
// stop -> commit only -> push, running the matching git commands.
func (r *Runner) finish(ctx context.Context, d Draft) (Result, error) {
	res := Result{Draft: d}
	r.Prompt.ShowMessage(d.Message)

	stop, err := r.Prompt.Confirm(ctx, QuestionStop, true)
	if err != nil {
		return res, err
	}
	if stop {
		log.Printf("app: stopped by user")
		if err := r.Git.Reset(ctx); err != nil {
			return res, err
		}
		res.Outcome = OutcomeStopped
		return res, nil
	}

	commitOnly, err := r.Prompt.Confirm(ctx, QuestionCommitOnly, true)
	if err != nil {
		return res, err
	}
	if commitOnly {
		if err := r.Git.AddAll(ctx); err != nil {
			return res, err
		}
		if res.Summary, err = r.Git.Commit(ctx, d.Message); err != nil {
			return res, err
		}
		fmt.Fprintln(r.Out, res.Summary)
		res.Outcome = OutcomeCommitted
		return res, nil
	}

	push, err := r.Prompt.Confirm(ctx, QuestionPush, true)
	if err != nil {
		return res, err
	}
	if !push {
		if err := r.Git.Reset(ctx); err != nil {
			return res, err
		}
		res.Outcome = OutcomeReset
		return res, nil
	}

	branch, err := r.Git.ResolveBranch(r.Branch)
	if err != nil {
		return res, err
	}
	if res.Summary, err = r.Git.Commit(ctx, d.Message); err != nil {
		return res, err
	}
	fmt.Fprintln(r.Out, res.Summary)
	if err := r.Git.Push(ctx, r.Remote, branch); err != nil {
		return res, fmt.Errorf("pushing to %s %s: %w", r.Remote, branch, err)
	}
	res.Outcome = OutcomePushed
	return res, nil
}
