package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/kilupskalvis/shurl/internal/models"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show commit history",
	Long:  `Display the commit history of the link repository, newest first.`,
	Args:  cobra.NoArgs,
	Run:   runLog,
}

var (
	logOneline bool
	logLimit   int
)

func init() {
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "Show each commit on a single line")
	logCmd.Flags().IntVarP(&logLimit, "n", "n", 0, "Limit the number of commits to show")
}

func runLog(cmd *cobra.Command, args []string) {
	c := initContext()

	commits, err := c.Repo.Log(logLimit)
	if err != nil {
		exitError("failed to get commit log: %v", err)
	}

	printLog(os.Stdout, commits, logOneline)
}

func printLog(w io.Writer, commits []*models.Commit, oneline bool) {
	if len(commits) == 0 {
		fmt.Fprintln(w, "No commits yet")
		return
	}

	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	for i, commit := range commits {
		isHead := i == 0

		if oneline {
			yellow.Fprintf(w, "%s ", commit.ShortID())
			if isHead {
				cyan.Fprint(w, "(HEAD) ")
			}
			fmt.Fprintln(w, commit.Message)
			continue
		}

		yellow.Fprintf(w, "commit %s", commit.ID)
		if isHead {
			cyan.Fprint(w, " (HEAD)")
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Author: %s <%s>\n", commit.Author.Name, commit.Author.Email)
		fmt.Fprintf(w, "Date:   %s\n", commit.Author.When.Format("Mon Jan 2 15:04:05 2006 -0700"))
		fmt.Fprintf(w, "\n    %s\n\n", commit.Message)
	}
}
