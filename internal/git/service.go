// Package git wraps the git commands gaiacommit runs against the working tree.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	log "github.com/chmouel/gaiacommit/internal/log"
)

// LookupPath is used to find executables in PATH. It's exposed as a package variable
// so tests can mock it and avoid depending on system binaries being installed.
var LookupPath = exec.LookPath

// Service runs git inside one working directory.
type Service struct {
	dir    string
	root   string
	repo   *gogit.Repository
	stderr io.Writer
}

// Open locates the repository enclosing dir and returns a Service rooted at dir.
// git's stderr is echoed to stderr as it is received; nil discards it.
func Open(dir string, stderr io.Writer) (*Service, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if _, err := LookupPath("git"); err != nil {
		return nil, fmt.Errorf("git executable not found: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", abs, ErrNotRepository)
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}

	root := abs
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}

	if stderr == nil {
		stderr = io.Discard
	}
	return &Service{dir: abs, root: root, repo: repo, stderr: stderr}, nil
}

// Dir is the directory git commands run in.
func (s *Service) Dir() string {
	return s.dir
}

// Root is the top level of the working tree.
func (s *Service) Root() string {
	return s.root
}

func (s *Service) debugf(format string, args ...any) {
	log.Printf(format, args...)
}

func prepareAllowedCommand(ctx context.Context, args []string) (*exec.Cmd, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no command provided")
	}

	switch args[0] {
	case "git":
		// #nosec G204 -- arguments for git command come from internal logic and are not shell interpolated
		return exec.CommandContext(ctx, "git", args[1:]...), nil
	default:
		return nil, fmt.Errorf("unsupported command %q", args[0])
	}
}

// run executes git with args in the service directory, feeding stdin when
// non-empty. stderr is copied to the service's writer before any failure is
// returned.
func (s *Service) run(ctx context.Context, stdin string, args ...string) (string, string, error) {
	return s.runAt(ctx, s.dir, stdin, args...)
}

// runTop is run from the top of the working tree, where the paths printed by
// `git diff --name-only` resolve.
func (s *Service) runTop(ctx context.Context, args ...string) (string, string, error) {
	return s.runAt(ctx, s.root, "", args...)
}

func (s *Service) runAt(ctx context.Context, dir, stdin string, args ...string) (string, string, error) {
	full := append([]string{"git"}, args...)
	command := strings.Join(full, " ")
	s.debugf("run: %s (cwd=%s)", command, dir)

	cmd, err := prepareAllowedCommand(ctx, full)
	if err != nil {
		return "", "", err
	}
	cmd.Dir = dir
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.MultiWriter(&stderr, s.stderr)

	runErr := cmd.Run()
	errText := strings.TrimSpace(stderr.String())
	if runErr != nil {
		cmdErr := &CommandError{Args: args, Stderr: errText, Err: runErr}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		log.Errorf("%s: %v", command, cmdErr)
		return stdout.String(), errText, cmdErr
	}

	s.debugf("ok: %s", command)
	return stdout.String(), errText, nil
}

// StageAll runs `git add .`.
func (s *Service) StageAll(ctx context.Context) error {
	_, stderr, err := s.run(ctx, "", "add", ".")
	if strings.Contains(stderr, "nothing to commit") {
		return ErrNothingToCommit
	}
	return err
}

// AddAll runs `git add -A`, which also stages deletions outside the current directory.
func (s *Service) AddAll(ctx context.Context) error {
	_, _, err := s.run(ctx, "", "add", "-A")
	return err
}

// StagedFiles lists staged paths relative to the repository root, excluding
// deletions, in the order git reports them.
func (s *Service) StagedFiles(ctx context.Context) ([]string, error) {
	out, _, err := s.runTop(ctx, "diff", "--staged", "--name-only", "--diff-filter=d")
	if err != nil {
		return nil, err
	}
	return parseNameOnly(out), nil
}

func parseNameOnly(out string) []string {
	files := []string{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		files = append(files, line)
	}
	return files
}

// StagedDiff returns the staged patch for one root-relative path exactly as
// git prints it.
func (s *Service) StagedDiff(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("no file given")
	}
	out, _, err := s.runTop(ctx, "diff", "--staged", "--", path)
	if err != nil {
		return "", err
	}
	return out, nil
}

// Reset unstages everything.
func (s *Service) Reset(ctx context.Context) error {
	_, _, err := s.run(ctx, "", "reset")
	return err
}

// Commit records the index with message, passed to git on stdin.
// It returns git's one-line summary of the new commit.
func (s *Service) Commit(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("refusing to commit with an empty message")
	}
	out, _, err := s.run(ctx, message, "commit", "-F", "-")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Push runs `git push -u remote branch`.
func (s *Service) Push(ctx context.Context, remote, branch string) error {
	if remote == "" || branch == "" {
		return fmt.Errorf("push needs a remote and a branch (got %q %q)", remote, branch)
	}
	_, _, err := s.run(ctx, "", "push", "-u", remote, branch)
	return err
}

// CurrentBranch returns the short name of the branch HEAD points at, including
// unborn branches in freshly initialised repositories.
func (s *Service) CurrentBranch() (string, error) {
	head, err := s.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	if head.Type() == plumbing.SymbolicReference && head.Target().IsBranch() {
		return head.Target().Short(), nil
	}
	return "", fmt.Errorf("not currently on a branch (detached HEAD)")
}

// ResolveBranch maps the configured push branch to a concrete name. "HEAD"
// and the empty string mean the current branch.
func (s *Service) ResolveBranch(branch string) (string, error) {
	branch = strings.TrimSpace(branch)
	if branch != "" && branch != "HEAD" {
		return branch, nil
	}
	return s.CurrentBranch()
}
