package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// ExecPublisher pushes by running the git CLI in the working tree, so the
// operator's credential helpers, ssh config, and hooks apply.
type ExecPublisher struct {
	dir string
	bin string
}

// NewExecPublisher returns a publisher running "git -C dir push".
func NewExecPublisher(dir string) *ExecPublisher {
	return &ExecPublisher{dir: dir, bin: "git"}
}

// Publish runs "git -C <dir> push <remote> <branch>". Stderr is included in
// the error on failure.
func (p *ExecPublisher) Publish(ctx context.Context, branch, remote string) error {
	if strings.HasPrefix(remote, "-") || strings.HasPrefix(branch, "-") {
		return fmt.Errorf("refusing to push %q to %q: arguments must not start with '-'", branch, remote)
	}

	args := []string{"-C", p.dir, "push", remote, branch}

	var stderr bytes.Buffer
	command := exec.CommandContext(ctx, p.bin, args...)
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return fmt.Errorf("git push %s %s in %s: %w (stderr: %s)",
			remote, branch, p.dir, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// NativePublisher pushes with go-git, without requiring a git binary.
type NativePublisher struct {
	repo *git.Repository
}

// NewNativePublisher returns a go-git publisher for an opened repository.
func NewNativePublisher(r *GitRepository) *NativePublisher {
	return &NativePublisher{repo: r.repo}
}

// Publish pushes refs/heads/<branch> to the same ref on remote. A remote that
// already has the commit is not an error.
func (p *NativePublisher) Publish(ctx context.Context, branch, remote string) error {
	ref := plumbing.NewBranchReferenceName(branch)
	spec := config.RefSpec(ref.String() + ":" + ref.String())

	err := p.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{spec},
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("push %s to %s: %w", branch, remote, err)
	}
	return nil
}
