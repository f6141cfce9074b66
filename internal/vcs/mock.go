package vcs

import (
	"context"
	"fmt"

	"github.com/kilupskalvis/shurl/internal/models"
)

// MockRepository is an in-memory implementation of Repository for testing.
// The working tree is a real directory so artifact writers can be exercised.
type MockRepository struct {
	// Dir is returned by Root
	Dir string
	// Branch is the checked-out branch; empty means detached
	Branch string
	// Commits stores created commits by ID
	Commits map[string]*models.Commit
	// HeadID is the commit HEAD points to ("" when unborn)
	HeadID string

	// Per-operation errors to inject failures
	StageErr      error
	WriteTreeErr  error
	HeadErr       error
	CommitErr     error
	UpdateHeadErr error

	// StageCalls counts StageAll invocations
	StageCalls int

	seq int
}

// NewMockRepository creates an empty MockRepository on branch master.
func NewMockRepository(dir string) *MockRepository {
	return &MockRepository{
		Dir:     dir,
		Branch:  "master",
		Commits: make(map[string]*models.Commit),
	}
}

// Root returns the working tree directory.
func (m *MockRepository) Root() string {
	return m.Dir
}

// StageAll records the call.
func (m *MockRepository) StageAll() error {
	m.StageCalls++
	return m.StageErr
}

// WriteTree returns a fixed fake tree ID.
func (m *MockRepository) WriteTree() (string, error) {
	if m.WriteTreeErr != nil {
		return "", m.WriteTreeErr
	}
	return fmt.Sprintf("%040x", 0xfeed), nil
}

// Head returns HeadID.
func (m *MockRepository) Head() (string, error) {
	if m.HeadErr != nil {
		return "", m.HeadErr
	}
	return m.HeadID, nil
}

// CreateCommit stores the commit under a sequential fake ID.
func (m *MockRepository) CreateCommit(req CommitRequest) (string, error) {
	if m.CommitErr != nil {
		return "", m.CommitErr
	}
	m.seq++
	id := fmt.Sprintf("%040x", m.seq)
	m.Commits[id] = &models.Commit{
		ID:        id,
		ParentIDs: append([]string(nil), req.ParentIDs...),
		Message:   req.Message,
		Author:    req.Author,
		Committer: req.Committer,
	}
	return id, nil
}

// UpdateHead sets HeadID.
func (m *MockRepository) UpdateHead(commitID string) error {
	if m.UpdateHeadErr != nil {
		return m.UpdateHeadErr
	}
	m.HeadID = commitID
	return nil
}

// CurrentBranch returns Branch.
func (m *MockRepository) CurrentBranch() (string, error) {
	if m.Branch == "" {
		return "", fmt.Errorf("HEAD is detached")
	}
	return m.Branch, nil
}

// Log follows first parents from HeadID.
func (m *MockRepository) Log(limit int) ([]*models.Commit, error) {
	var out []*models.Commit
	for id := m.HeadID; id != ""; {
		if limit > 0 && len(out) >= limit {
			break
		}
		c, ok := m.Commits[id]
		if !ok {
			return nil, fmt.Errorf("commit %s not found", id)
		}
		out = append(out, c)
		id = c.ParentID()
	}
	return out, nil
}

// PublishCall records one Publish invocation.
type PublishCall struct {
	Branch string
	Remote string
}

// MockPublisher records publish requests for testing.
type MockPublisher struct {
	Calls []PublishCall
	// Err can be set to make Publish fail
	Err error
}

// Publish records the call and returns Err.
func (m *MockPublisher) Publish(ctx context.Context, branch, remote string) error {
	m.Calls = append(m.Calls, PublishCall{Branch: branch, Remote: remote})
	return m.Err
}
