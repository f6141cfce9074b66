package core

import (
	"fmt"
	"html"
	"os"
	"path/filepath"

	"github.com/kilupskalvis/shurl/internal/apperr"
	"github.com/kilupskalvis/shurl/internal/models"
)

// redirectTemplate takes the escaped target once, referenced three times.
const redirectTemplate = `<!DOCTYPE html>
<html>
    <head>
        <meta charset="utf-8" />
        <meta http-equiv="refresh" content="0; URL=%[1]s" />
    </head>
    <body>
        <p>Redirecting...</p>
        <p>If you are not redirected automatically, follow <a href="%[1]s">%[1]s</a></p>
    </body>
</html>
`

// RenderRedirect returns the redirect document for link.
func RenderRedirect(link *models.ShortLink) []byte {
	return []byte(fmt.Sprintf(redirectTemplate, html.EscapeString(link.Target.String())))
}

// WriteRedirect writes <root>/<name>.html, replacing any existing file,
// and returns its path.
func WriteRedirect(root string, link *models.ShortLink) (string, error) {
	path := filepath.Join(root, link.ArtifactFile())
	if err := os.WriteFile(path, RenderRedirect(link), 0644); err != nil {
		return "", apperr.Wrap(apperr.ErrWrite, "failed to write redirect "+path, err)
	}
	return path, nil
}
