package core

import (
	"context"
	"errors"
	"html"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/kilupskalvis/shurl/internal/apperr"
	"github.com/kilupskalvis/shurl/internal/clock"
	"github.com/kilupskalvis/shurl/internal/config"
	"github.com/kilupskalvis/shurl/internal/vcs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generatedName = regexp.MustCompile(`^[a-z]{5}$`)

var testClock = clock.Fake(testSig.When)

func newTestConfig() *config.Config {
	cfg := config.Default()
	cfg.Name = "Test Operator"
	cfg.Email = "operator@example.com"
	return cfg
}

// newGitRepo initializes an empty repository and opens it.
func newGitRepo(t *testing.T) *vcs.GitRepository {
	t.Helper()
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	repo, err := vcs.Open(dir)
	require.NoError(t, err)
	return repo
}

// ==================== ParseTarget ====================

func TestParseTarget(t *testing.T) {
	valid := []string{
		"https://example.com/",
		"http://example.com/path?q=1#frag",
		"mailto:someone@example.com",
		"ftp://files.example.com/a.txt",
	}
	for _, raw := range valid {
		u, err := ParseTarget(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, raw, u.String())
	}

	invalid := []struct {
		raw     string
		wantErr string
	}{
		{"", "cannot be empty"},
		{"example.com", "must include a scheme"},
		{"/relative/path", "must include a scheme"},
		{"https://", "must include a host"},
		{"http://[::1", "failed to parse"},
	}
	for _, tt := range invalid {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := ParseTarget(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrInvalidURL))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// ==================== Shorten (mock repository) ====================

func TestShorten_GeneratedName(t *testing.T) {
	repo := vcs.NewMockRepository(t.TempDir())
	pub := &vcs.MockPublisher{}

	result, err := Shorten(context.Background(), newTestConfig(), repo, pub, testClock, "https://example.com/", "")
	require.NoError(t, err)

	assert.Regexp(t, generatedName, result.Link.Name)
	assert.Equal(t, filepath.Join(repo.Dir, result.Link.Name+".html"), result.ArtifactPath)
	assert.FileExists(t, result.ArtifactPath)

	entries, err := ReadLedger(repo.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "https://example.com/", entries[0].Target)
	assert.Equal(t, "./"+result.Link.Name+".html", entries[0].Href)

	require.NotNil(t, result.Commit)
	assert.Equal(t, "Add redirect to https://example.com/", result.Commit.Message)
	assert.Equal(t, "Test Operator", result.Commit.Author.Name)
	assert.Equal(t, "operator@example.com", result.Commit.Committer.Email)
	assert.Equal(t, testSig.When, result.Commit.Author.When)
	assert.Equal(t, testSig.When, result.Commit.Committer.When)
	assert.Equal(t, result.Commit.ID, repo.HeadID)

	assert.True(t, result.Published)
	assert.NoError(t, result.PublishErr)
	assert.Equal(t, []vcs.PublishCall{{Branch: "master", Remote: "origin"}}, pub.Calls)
}

func TestShorten_SuppliedNameOverwrites(t *testing.T) {
	repo := vcs.NewMockRepository(t.TempDir())
	cfg := newTestConfig()

	first, err := Shorten(context.Background(), cfg, repo, nil, testClock, "https://one.example/", "mine")
	require.NoError(t, err)
	second, err := Shorten(context.Background(), cfg, repo, nil, testClock, "https://two.example/", "mine")
	require.NoError(t, err)

	assert.Equal(t, first.ArtifactPath, second.ArtifactPath)
	data, err := os.ReadFile(second.ArtifactPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://two.example/")
	assert.NotContains(t, string(data), "https://one.example/")

	// The ledger keeps both entries
	entries, err := ReadLedger(repo.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "https://one.example/", entries[0].Target)
	assert.Equal(t, "https://two.example/", entries[1].Target)

	assert.Equal(t, []string{first.Commit.ID}, second.Commit.ParentIDs)
}

func TestShorten_InvalidInputWritesNothing(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		short   string
		wantErr error
	}{
		{"no scheme", "example.com", "", apperr.ErrInvalidURL},
		{"empty url", "", "", apperr.ErrInvalidURL},
		{"bad name", "https://example.com/", "../up", apperr.ErrInvalidName},
		{"reserved name", "https://example.com/", "index", apperr.ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := vcs.NewMockRepository(t.TempDir())

			result, err := Shorten(context.Background(), newTestConfig(), repo, nil, testClock, tt.url, tt.short)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, tt.wantErr))

			files, err := os.ReadDir(repo.Dir)
			require.NoError(t, err)
			assert.Empty(t, files)
			assert.Equal(t, 0, repo.StageCalls)
		})
	}
}

func TestShorten_ExistenceCheckError(t *testing.T) {
	// A regular file as the root makes the artifact stat fail
	blocker := filepath.Join(t.TempDir(), "root")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	repo := vcs.NewMockRepository(blocker)

	_, err := Shorten(context.Background(), newTestConfig(), repo, nil, testClock, "https://example.com/", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrWrite))
	assert.Equal(t, 0, repo.StageCalls)
}

func TestShorten_PublishFailureKeepsCommit(t *testing.T) {
	repo := vcs.NewMockRepository(t.TempDir())
	pub := &vcs.MockPublisher{Err: errors.New("remote rejected")}

	result, err := Shorten(context.Background(), newTestConfig(), repo, pub, testClock, "https://example.com/", "")
	require.NoError(t, err)

	assert.False(t, result.Published)
	require.Error(t, result.PublishErr)
	assert.True(t, errors.Is(result.PublishErr, apperr.ErrPublish))
	assert.Equal(t, result.Commit.ID, repo.HeadID)
}

func TestShorten_NilPublisher(t *testing.T) {
	repo := vcs.NewMockRepository(t.TempDir())

	result, err := Shorten(context.Background(), newTestConfig(), repo, nil, testClock, "https://example.com/", "")
	require.NoError(t, err)
	assert.False(t, result.Published)
	assert.NoError(t, result.PublishErr)
}

func TestShorten_SnapshotFailureLeavesFiles(t *testing.T) {
	repo := vcs.NewMockRepository(t.TempDir())
	repo.CommitErr = errors.New("object store full")

	result, err := Shorten(context.Background(), newTestConfig(), repo, nil, testClock, "https://example.com/", "kept")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, apperr.ErrSnapshot))

	// No rollback: artifact and ledger stay in the working tree
	assert.FileExists(t, filepath.Join(repo.Dir, "kept.html"))
	assert.FileExists(t, filepath.Join(repo.Dir, "index.html"))
	assert.Equal(t, "", repo.HeadID)
}

// ==================== Shorten (git repository) ====================

func TestShorten_GitRootThenChild(t *testing.T) {
	repo := newGitRepo(t)
	cfg := newTestConfig()

	first, err := Shorten(context.Background(), cfg, repo, nil, testClock, "https://one.example/", "")
	require.NoError(t, err)
	assert.True(t, first.Commit.IsRoot())

	second, err := Shorten(context.Background(), cfg, repo, nil, testClock, "https://two.example/", "")
	require.NoError(t, err)
	assert.Equal(t, []string{first.Commit.ID}, second.Commit.ParentIDs)

	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, second.Commit.ID, head)

	history, err := repo.Log(0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Add redirect to https://two.example/", history[0].Message)
	assert.Equal(t, "Add redirect to https://one.example/", history[1].Message)
	assert.Equal(t, "Test Operator", history[0].Author.Name)
	assert.Equal(t, "operator@example.com", history[0].Author.Email)
}

func TestShorten_GitLedgerOrder(t *testing.T) {
	repo := newGitRepo(t)
	cfg := newTestConfig()
	targets := []string{
		"https://a.example/",
		"https://b.example/",
		"https://c.example/",
		"https://d.example/",
	}

	for _, target := range targets {
		_, err := Shorten(context.Background(), cfg, repo, nil, testClock, target, "")
		require.NoError(t, err)
	}

	entries, err := ReadLedger(repo.Root())
	require.NoError(t, err)
	require.Len(t, entries, len(targets))
	for i, target := range targets {
		assert.Equal(t, target, entries[i].Target)
	}

	history, err := repo.Log(0)
	require.NoError(t, err)
	assert.Len(t, history, len(targets))
}

func TestShorten_GitCommitContainsArtifacts(t *testing.T) {
	repo := newGitRepo(t)

	result, err := Shorten(context.Background(), newTestConfig(), repo, nil, testClock, "https://example.com/", "docs")
	require.NoError(t, err)

	r, err := git.PlainOpen(repo.Root())
	require.NoError(t, err)
	commit, err := r.CommitObject(plumbing.NewHash(result.Commit.ID))
	require.NoError(t, err)

	_, err = commit.File("docs.html")
	assert.NoError(t, err)
	_, err = commit.File("index.html")
	assert.NoError(t, err)
}

func TestShorten_OpenMissingRepository(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nope")

	_, err := vcs.Open(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrRepositoryOpen))
	assert.NoDirExists(t, dir)
}

func TestShorten_GitCommitTimestampFromClock(t *testing.T) {
	repo := newGitRepo(t)
	when := time.Date(2023, 3, 4, 5, 6, 7, 0, time.UTC)

	_, err := Shorten(context.Background(), newTestConfig(), repo, nil, clock.Fake(when), "https://example.com/", "")
	require.NoError(t, err)

	history, err := repo.Log(1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Author.When.Equal(when), "author time %s", history[0].Author.When)
	assert.True(t, history[0].Committer.When.Equal(when), "committer time %s", history[0].Committer.When)
}

// ==================== Names that need escaping ====================

func TestShorten_SpecialCharacterNamesResolveToArtifact(t *testing.T) {
	base, err := url.Parse("https://links.example/")
	require.NoError(t, err)

	names := []string{"a#b", "q?x", `say"hi`, "50%off", "a&b", "<tag>", "with space"}

	repo := vcs.NewMockRepository(t.TempDir())
	for _, name := range names {
		_, err := Shorten(context.Background(), newTestConfig(), repo, nil, testClock, "https://example.com/"+url.PathEscape(name), name)
		require.NoError(t, err, name)
	}

	entries, err := ReadLedger(repo.Dir)
	require.NoError(t, err)
	require.Len(t, entries, len(names))

	data, err := os.ReadFile(filepath.Join(repo.Dir, "index.html"))
	require.NoError(t, err)
	rawHrefs := regexp.MustCompile(`href="([^"]*)"`).FindAllStringSubmatch(string(data), -1)
	require.Len(t, rawHrefs, len(names))

	for i, name := range names {
		assert.Equal(t, "./"+name+".html", entries[i].Href, name)
		assert.FileExists(t, filepath.Join(repo.Dir, name+".html"))

		// A browser resolves the written href to the artifact's path
		ref, err := url.Parse(html.UnescapeString(rawHrefs[i][1]))
		require.NoError(t, err, name)
		resolved := base.ResolveReference(ref)
		assert.Equal(t, "/"+name+".html", resolved.Path, name)
		assert.Empty(t, resolved.RawQuery, name)
		assert.Empty(t, resolved.Fragment, name)
	}
}
