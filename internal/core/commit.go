package core

import (
	"context"
	"fmt"

	"github.com/kilupskalvis/shurl/internal/apperr"
	"github.com/kilupskalvis/shurl/internal/logging"
	"github.com/kilupskalvis/shurl/internal/models"
	"github.com/kilupskalvis/shurl/internal/vcs"
)

// CommitMessage returns the message recorded for a new redirect
func CommitMessage(target string) string {
	return "Add redirect to " + target
}

// BuildSnapshot stages the whole working tree, writes it as a tree, and
// commits it on top of the current HEAD. The first commit of a repository has
// no parent. HEAD is advanced to the new commit.
func BuildSnapshot(repo vcs.Repository, sig models.Signature, message string) (*models.Commit, error) {
	logger := logging.GetLogger("core")
	done := logging.LogOperationStart(logger, "snapshot")
	defer done()

	if err := repo.StageAll(); err != nil {
		return nil, apperr.Wrap(apperr.ErrSnapshot, "failed to stage changes", err)
	}

	treeID, err := repo.WriteTree()
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrSnapshot, "failed to write tree", err)
	}

	parentID, err := repo.Head()
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrSnapshot, "failed to resolve HEAD", err)
	}

	var parents []string
	if parentID != "" {
		parents = []string{parentID}
	}

	commitID, err := repo.CreateCommit(vcs.CommitRequest{
		TreeID:    treeID,
		ParentIDs: parents,
		Message:   message,
		Author:    sig,
		Committer: sig,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrSnapshot, "failed to create commit", err)
	}

	if err := repo.UpdateHead(commitID); err != nil {
		return nil, apperr.Wrap(apperr.ErrSnapshot, fmt.Sprintf("failed to advance HEAD to %s", commitID), err)
	}

	logger.Info().Str("commit", commitID).Str("parent", parentID).Msg("Created snapshot")

	return &models.Commit{
		ID:        commitID,
		ParentIDs: parents,
		Message:   message,
		Author:    sig,
		Committer: sig,
	}, nil
}

// PublishSnapshot pushes the checked-out branch to remote. Failures are
// returned as ErrPublish; the local commit is kept either way.
func PublishSnapshot(ctx context.Context, repo vcs.Repository, pub vcs.Publisher, remote string) error {
	branch, err := repo.CurrentBranch()
	if err != nil {
		return apperr.Wrap(apperr.ErrPublish, "failed to resolve branch to publish", err)
	}

	if err := pub.Publish(ctx, branch, remote); err != nil {
		return apperr.Wrap(apperr.ErrPublish, fmt.Sprintf("failed to publish %s to %s", branch, remote), err)
	}
	return nil
}
