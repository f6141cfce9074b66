package vcs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/kilupskalvis/shurl/internal/apperr"
	"github.com/kilupskalvis/shurl/internal/logging"
	"github.com/kilupskalvis/shurl/internal/models"
	"github.com/rs/zerolog"
)

// GitRepository implements Repository on top of go-git.
type GitRepository struct {
	repo   *git.Repository
	root   string
	logger zerolog.Logger
}

// Open opens the existing non-bare repository whose working tree is path.
// Parent directories are not searched.
func Open(path string) (*GitRepository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrRepositoryOpen, "failed to resolve repository path "+path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrRepositoryOpen, "failed to open repository "+abs, err)
	}
	if !info.IsDir() {
		return nil, apperr.New(apperr.ErrRepositoryOpen, "repository path is not a directory: "+abs)
	}

	repo, err := git.PlainOpen(abs)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrRepositoryOpen, "failed to open repository "+abs, err)
	}

	if _, err := repo.Worktree(); err != nil {
		return nil, apperr.Wrap(apperr.ErrRepositoryOpen, "repository has no working tree "+abs, err)
	}

	return &GitRepository{
		repo:   repo,
		root:   abs,
		logger: logging.GetLogger("vcs"),
	}, nil
}

// Root returns the absolute working tree directory
func (g *GitRepository) Root() string {
	return g.root
}

// StageAll adds, updates, and removes index entries to match the working tree
func (g *GitRepository) StageAll() error {
	wt, err := g.repo.Worktree()
	if err != nil {
		return fmt.Errorf("get worktree: %w", err)
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("stage working tree: %w", err)
	}

	g.logger.Debug().Str("root", g.root).Msg("Staged working tree")
	return nil
}

// WriteTree stores tree objects for the current index and returns the root tree ID
func (g *GitRepository) WriteTree() (string, error) {
	idx, err := g.repo.Storer.Index()
	if err != nil {
		return "", fmt.Errorf("read index: %w", err)
	}

	hash, err := writeTree(g.repo.Storer, idx.Entries)
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}

	g.logger.Debug().Str("tree", hash.String()).Int("entries", len(idx.Entries)).Msg("Wrote tree")
	return hash.String(), nil
}

// Head returns the commit HEAD resolves to, or "" on an unborn branch
func (g *GitRepository) Head() (string, error) {
	ref, err := g.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

// CreateCommit encodes and stores a commit object. HEAD is not moved.
func (g *GitRepository) CreateCommit(req CommitRequest) (string, error) {
	if !plumbing.IsHash(req.TreeID) {
		return "", fmt.Errorf("invalid tree id %q", req.TreeID)
	}

	parents := make([]plumbing.Hash, 0, len(req.ParentIDs))
	for _, id := range req.ParentIDs {
		if !plumbing.IsHash(id) {
			return "", fmt.Errorf("invalid parent id %q", id)
		}
		parents = append(parents, plumbing.NewHash(id))
	}

	commit := &object.Commit{
		Author:       toGitSignature(req.Author),
		Committer:    toGitSignature(req.Committer),
		Message:      req.Message,
		TreeHash:     plumbing.NewHash(req.TreeID),
		ParentHashes: parents,
	}

	obj := g.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return "", fmt.Errorf("encode commit: %w", err)
	}

	hash, err := g.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return "", fmt.Errorf("store commit: %w", err)
	}

	g.logger.Debug().Str("commit", hash.String()).Int("parents", len(parents)).Msg("Created commit")
	return hash.String(), nil
}

// UpdateHead points the checked-out branch (or a detached HEAD) at commitID.
// On an unborn branch this creates the branch reference.
func (g *GitRepository) UpdateHead(commitID string) error {
	if !plumbing.IsHash(commitID) {
		return fmt.Errorf("invalid commit id %q", commitID)
	}

	head, err := g.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return fmt.Errorf("read HEAD: %w", err)
	}

	name := plumbing.HEAD
	if head.Type() == plumbing.SymbolicReference {
		name = head.Target()
	}

	ref := plumbing.NewHashReference(name, plumbing.NewHash(commitID))
	if err := g.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("update %s: %w", name, err)
	}

	g.logger.Debug().Str("ref", name.String()).Str("commit", commitID).Msg("Advanced HEAD")
	return nil
}

// CurrentBranch returns the short name of the checked-out branch
func (g *GitRepository) CurrentBranch() (string, error) {
	head, err := g.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", fmt.Errorf("HEAD is detached")
	}
	return head.Target().Short(), nil
}

// Log returns commits reachable from HEAD, newest first. A limit of 0 returns all.
func (g *GitRepository) Log(limit int) ([]*models.Commit, error) {
	head, err := g.Head()
	if err != nil {
		return nil, err
	}
	if head == "" {
		return nil, nil
	}

	iter, err := g.repo.Log(&git.LogOptions{From: plumbing.NewHash(head)})
	if err != nil {
		return nil, fmt.Errorf("walk history: %w", err)
	}
	defer iter.Close()

	var commits []*models.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(commits) >= limit {
			return storer.ErrStop
		}
		commits = append(commits, fromGitCommit(c))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk history: %w", err)
	}

	return commits, nil
}

func toGitSignature(s models.Signature) object.Signature {
	return object.Signature{Name: s.Name, Email: s.Email, When: s.When}
}

func fromGitCommit(c *object.Commit) *models.Commit {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	return &models.Commit{
		ID:        c.Hash.String(),
		ParentIDs: parents,
		Message:   c.Message,
		Author:    models.Signature{Name: c.Author.Name, Email: c.Author.Email, When: c.Author.When},
		Committer: models.Signature{Name: c.Committer.Name, Email: c.Committer.Email, When: c.Committer.When},
	}
}
