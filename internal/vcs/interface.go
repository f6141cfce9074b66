// Package vcs is the version-control collaborator used to snapshot and
// publish the link repository.
package vcs

import (
	"context"

	"github.com/kilupskalvis/shurl/internal/models"
)

// CommitRequest carries everything needed to write a commit object.
type CommitRequest struct {
	TreeID    string
	ParentIDs []string
	Message   string
	Author    models.Signature
	Committer models.Signature
}

// Repository defines the contract for repository operations.
// This interface enables mocking for testing the core package.
type Repository interface {
	// Root is the working tree directory
	Root() string

	// Snapshot operations
	StageAll() error
	WriteTree() (string, error)
	// Head returns the commit HEAD points to, or "" if the repository has no commits
	Head() (string, error)
	CreateCommit(req CommitRequest) (string, error)
	UpdateHead(commitID string) error

	// History operations
	CurrentBranch() (string, error)
	Log(limit int) ([]*models.Commit, error)
}

// Publisher sends local history to a remote.
type Publisher interface {
	Publish(ctx context.Context, branch, remote string) error
}

// Verify that the implementations satisfy the interfaces at compile time
var (
	_ Repository = (*GitRepository)(nil)
	_ Repository = (*MockRepository)(nil)
	_ Publisher  = (*ExecPublisher)(nil)
	_ Publisher  = (*NativePublisher)(nil)
	_ Publisher  = (*MockPublisher)(nil)
)
