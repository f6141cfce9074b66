package core

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/kilupskalvis/shurl/internal/apperr"
	"github.com/kilupskalvis/shurl/internal/models"
)

// NameLength is the length of generated short names.
const NameLength = 5

const nameAlphabet = "abcdefghijklmnopqrstuvwxyz"

// reservedName would make the artifact file collide with the ledger.
const reservedName = "index"

// maxNameBytes keeps "<name>.html" within common filesystem limits.
const maxNameBytes = 255 - len(models.ArtifactExt)

// ExistsFunc reports whether an artifact for name is already present.
type ExistsFunc func(name string) (bool, error)

// AllocateOptions tunes name generation.
type AllocateOptions struct {
	// MaxAttempts stops the search after this many taken names; 0 never stops.
	MaxAttempts int
	// Rand is the randomness source; nil uses the global generator.
	Rand *rand.Rand
}

// GenerateName returns NameLength random lowercase letters.
func GenerateName(rng *rand.Rand) string {
	var b strings.Builder
	b.Grow(NameLength)
	for i := 0; i < NameLength; i++ {
		var n int
		if rng != nil {
			n = rng.IntN(len(nameAlphabet))
		} else {
			n = rand.IntN(len(nameAlphabet))
		}
		b.WriteByte(nameAlphabet[n])
	}
	return b.String()
}

// AllocateName picks the short name for a new link. A supplied name is
// validated and returned as is, without checking for an existing artifact.
// Otherwise names are generated until exists reports a free one.
func AllocateName(supplied string, exists ExistsFunc, opts AllocateOptions) (string, error) {
	if supplied != "" {
		if err := ValidateName(supplied); err != nil {
			return "", err
		}
		return supplied, nil
	}

	for attempt := 1; ; attempt++ {
		name := GenerateName(opts.Rand)

		taken := name == reservedName
		if !taken {
			var err error
			taken, err = exists(name)
			if err != nil {
				return "", err
			}
		}
		if !taken {
			return name, nil
		}

		if opts.MaxAttempts > 0 && attempt >= opts.MaxAttempts {
			return "", apperr.New(apperr.ErrNamespaceExhausted,
				fmt.Sprintf("no free short name after %d attempts", attempt))
		}
	}
}

// ArtifactExists returns an ExistsFunc checking for <root>/<name>.html.
func ArtifactExists(root string) ExistsFunc {
	return func(name string) (bool, error) {
		path := filepath.Join(root, models.ArtifactFileName(name))
		_, err := os.Stat(path)
		if err == nil {
			return true, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, apperr.Wrap(apperr.ErrWrite, "failed to check "+path, err)
	}
}

// ValidateName checks that a short name is usable as a single file name.
func ValidateName(name string) error {
	if name == "" {
		return apperr.New(apperr.ErrInvalidName, "short name cannot be empty")
	}
	if len(name) > maxNameBytes {
		return apperr.New(apperr.ErrInvalidName,
			fmt.Sprintf("short name is longer than %d bytes", maxNameBytes))
	}
	if name == "." || name == ".." {
		return apperr.New(apperr.ErrInvalidName, fmt.Sprintf("short name %q is not a file name", name))
	}
	if strings.EqualFold(name, reservedName) {
		return apperr.New(apperr.ErrInvalidName,
			fmt.Sprintf("short name %q is reserved for the link index", name))
	}
	for _, r := range name {
		if r == '/' || r == '\\' || r == 0 || unicode.IsControl(r) {
			return apperr.New(apperr.ErrInvalidName,
				fmt.Sprintf("short name %q contains invalid characters", name))
		}
	}
	return nil
}
