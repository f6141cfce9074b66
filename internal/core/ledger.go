package core

import (
	"bufio"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"github.com/kilupskalvis/shurl/internal/apperr"
	"github.com/kilupskalvis/shurl/internal/models"
)

var ledgerLinePattern = regexp.MustCompile(`^(.*): <a href="([^"]*)">[^<]*</a><br/>$`)

// LedgerLine returns the text appended to the ledger for link, including the
// leading newline. The artifact file is path-escaped in the href so names
// containing '#', '?' or '%' still resolve to the artifact.
func LedgerLine(link *models.ShortLink) string {
	file := link.ArtifactFile()
	return fmt.Sprintf("\n%s: <a href=\"./%s\">./%s</a><br/>",
		html.EscapeString(link.Target.String()),
		html.EscapeString(url.PathEscape(file)),
		html.EscapeString(file))
}

// AppendLedger appends one entry for link to <root>/index.html, creating the
// file if needed. Existing content is never read or rewritten.
func AppendLedger(root string, link *models.ShortLink) (err error) {
	path := filepath.Join(root, models.LedgerFile)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return apperr.Wrap(apperr.ErrWrite, "failed to open ledger "+path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = apperr.Wrap(apperr.ErrWrite, "failed to close ledger "+path, cerr)
		}
	}()

	if _, err := f.WriteString(LedgerLine(link)); err != nil {
		return apperr.Wrap(apperr.ErrWrite, "failed to append to ledger "+path, err)
	}
	return nil
}

// ReadLedger parses the entries of <root>/index.html in file order. Lines that
// are not ledger entries are skipped; a missing ledger has no entries.
func ReadLedger(root string) ([]models.LedgerEntry, error) {
	path := filepath.Join(root, models.LedgerFile)

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	var entries []models.LedgerEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := ledgerLinePattern.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		entries = append(entries, models.LedgerEntry{
			Target: html.UnescapeString(m[1]),
			Href:   unescapeHref(m[2]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	return entries, nil
}

// unescapeHref reverses the attribute and path escaping of a ledger href.
// Entries written before hrefs were path-escaped are returned as is.
func unescapeHref(raw string) string {
	href := html.UnescapeString(raw)
	if decoded, err := url.PathUnescape(href); err == nil {
		return decoded
	}
	return href
}
