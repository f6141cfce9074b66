// Package core contains business logic for shurl operations.
package core

import (
	"context"
	"fmt"
	"net/url"

	"github.com/kilupskalvis/shurl/internal/apperr"
	"github.com/kilupskalvis/shurl/internal/clock"
	"github.com/kilupskalvis/shurl/internal/config"
	"github.com/kilupskalvis/shurl/internal/logging"
	"github.com/kilupskalvis/shurl/internal/models"
	"github.com/kilupskalvis/shurl/internal/vcs"
)

// ShortenResult contains the outcome of one shorten run.
type ShortenResult struct {
	Link         *models.ShortLink
	ArtifactPath string
	Commit       *models.Commit
	Published    bool
	// PublishErr is set when the commit was created but could not be published
	PublishErr error
}

// ParseTarget parses an absolute URL. http and https URLs must have a host.
func ParseTarget(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, apperr.New(apperr.ErrInvalidURL, "url cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInvalidURL, "failed to parse url", err)
	}

	if u.Scheme == "" {
		return nil, apperr.New(apperr.ErrInvalidURL, fmt.Sprintf("url %q must include a scheme", raw))
	}

	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return nil, apperr.New(apperr.ErrInvalidURL, fmt.Sprintf("url %q must include a host", raw))
	}

	return u, nil
}

// Shorten creates a short link for rawURL in the repository and commits it.
// Steps run in order with no rollback: a failure after the artifact is
// written leaves the working tree modified. A nil publisher skips publishing.
// Publish failures are reported in the result, not as an error. clk stamps
// the commit's author and committer.
func Shorten(ctx context.Context, cfg *config.Config, repo vcs.Repository, pub vcs.Publisher, clk clock.Clock, rawURL, name string) (*ShortenResult, error) {
	logger := logging.GetLogger("core")

	target, err := ParseTarget(rawURL)
	if err != nil {
		return nil, err
	}

	root := repo.Root()
	allocated, err := AllocateName(name, ArtifactExists(root), AllocateOptions{MaxAttempts: cfg.MaxAttempts})
	if err != nil {
		return nil, err
	}
	link := &models.ShortLink{Name: allocated, Target: target}
	logger.Debug().Str("name", link.Name).Bool("supplied", name != "").Msg("Allocated short name")

	path, err := WriteRedirect(root, link)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("path", path).Msg("Wrote redirect")

	if err := AppendLedger(root, link); err != nil {
		return nil, err
	}

	sig := models.Signature{Name: cfg.Name, Email: cfg.Email, When: clk.Now()}
	commit, err := BuildSnapshot(repo, sig, CommitMessage(target.String()))
	if err != nil {
		return nil, err
	}

	result := &ShortenResult{Link: link, ArtifactPath: path, Commit: commit}
	if pub == nil {
		return result, nil
	}

	if err := PublishSnapshot(ctx, repo, pub, cfg.Remote); err != nil {
		logger.Warn().Err(err).Str("remote", cfg.Remote).Msg("Publish failed, commit kept locally")
		result.PublishErr = err
		return result, nil
	}
	result.Published = true

	return result, nil
}
