package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/kilupskalvis/shurl/internal/core"
	"github.com/kilupskalvis/shurl/internal/models"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List short links",
	Long: `List the short links recorded in index.html, oldest first.

A name that was reused appears once per run; the last entry is the one its
page currently redirects to.`,
	Args: cobra.NoArgs,
	Run:  runList,
}

func runList(cmd *cobra.Command, args []string) {
	c := initContext()

	entries, err := core.ReadLedger(c.Repo.Root())
	if err != nil {
		exitError("failed to read ledger: %v", err)
	}

	printList(os.Stdout, entries)
}

func printList(w io.Writer, entries []models.LedgerEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No links yet")
		return
	}

	cyan := color.New(color.FgCyan)
	for _, e := range entries {
		cyan.Fprintf(w, "%-12s", linkName(e.Href))
		fmt.Fprintf(w, " %s\n", e.Target)
	}
}

// linkName recovers the short name from a ledger href like ./abcde.html
func linkName(href string) string {
	name := strings.TrimPrefix(href, "./")
	return strings.TrimSuffix(name, models.ArtifactExt)
}
