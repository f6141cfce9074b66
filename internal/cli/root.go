// Package cli implements the command-line interface for shurl.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/kilupskalvis/shurl/internal/apperr"
	"github.com/kilupskalvis/shurl/internal/clock"
	"github.com/kilupskalvis/shurl/internal/config"
	"github.com/kilupskalvis/shurl/internal/core"
	"github.com/kilupskalvis/shurl/internal/logging"
	"github.com/kilupskalvis/shurl/internal/vcs"
	"github.com/spf13/cobra"
)

// cmdContext holds common resources for CLI commands
type cmdContext struct {
	Config *config.Config
	Repo   *vcs.GitRepository
}

// initContext loads the configuration and opens the repository it names.
// A freshly written default configuration ends the run successfully so the
// operator can edit it first.
func initContext() *cmdContext {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if errors.Is(err, apperr.ErrConfigCreated) {
		color.Green("Info: wrote default configuration to %s", cfg.Path())
		fmt.Println("Set repo_path, name and email, then run shurl again.")
		os.Exit(0)
	}
	if err != nil {
		exitWithError(err)
	}

	repo, err := vcs.Open(cfg.RepoDir())
	if err != nil {
		exitWithError(err)
	}

	return &cmdContext{Config: cfg, Repo: repo}
}

var (
	verbosity  int
	configPath string
	noPush     bool
)

var rootCmd = &cobra.Command{
	Use:   "shurl <url> [name]",
	Short: "Short links in a git-backed static site",
	Long: `shurl creates a short link for a URL inside a git repository that is served
as a static site. Each link is an HTML page that redirects to the target.

A random five letter name is chosen unless one is given. The page is written to
<repo>/<name>.html, an entry is appended to <repo>/index.html, and the change is
committed and pushed to the configured remote.`,
	Args: cobra.RangeArgs(1, 2),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetupLogger(verbosity)
	},
	Run: runShorten,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug, -vvv trace)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the configuration file")
	rootCmd.Flags().BoolVar(&noPush, "no-push", false, "Commit without publishing to the remote")

	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(listCmd)
}

func runShorten(cmd *cobra.Command, args []string) {
	c := initContext()
	done := logging.LogOperationStart(logging.GetLogger("cli"), "shorten")
	defer done()

	var name string
	if len(args) > 1 {
		name = args[1]
	}

	pub := newPublisher(c.Config, c.Repo, noPush)
	result, err := core.Shorten(context.Background(), c.Config, c.Repo, pub, clock.Real(), args[0], name)
	if err != nil {
		exitWithError(err)
	}

	printResult(os.Stdout, result, c.Config.Remote, c.Repo.Root())
}

// newPublisher selects the publish method from the configuration.
// A nil publisher skips publishing.
func newPublisher(cfg *config.Config, repo *vcs.GitRepository, skip bool) vcs.Publisher {
	if skip {
		return nil
	}

	switch cfg.Publish {
	case config.PublishNative:
		return vcs.NewNativePublisher(repo)
	case config.PublishNone:
		return nil
	default:
		return vcs.NewExecPublisher(repo.Root())
	}
}

func printResult(w io.Writer, result *core.ShortenResult, remote, root string) {
	fmt.Fprintf(w, "Created %s\n", result.ArtifactPath)
	fmt.Fprintf(w, "Created commit with object id: %s\n", result.Commit.ID)

	switch {
	case result.PublishErr != nil:
		yellow := color.New(color.FgYellow)
		yellow.Fprintf(w, "Warning: %v\n", result.PublishErr)
		fmt.Fprintf(w, "The commit is kept locally. Publish it with: git -C %s push %s\n", root, remote)
	case result.Published:
		color.New(color.FgGreen).Fprintf(w, "Published to %s\n", remote)
	}
}

// hints tell the operator how to recover from an error kind
var hints = map[error]string{
	apperr.ErrConfigIO:           "check that the configuration file is readable (see --config or $SHURL_CONFIG)",
	apperr.ErrConfigParse:        "fix the TOML syntax of the configuration file",
	apperr.ErrConfigInvalid:      "correct the listed keys in the configuration file",
	apperr.ErrInvalidURL:         "pass an absolute URL such as https://example.com/page",
	apperr.ErrInvalidName:        "use a single file name segment other than \"index\"",
	apperr.ErrRepositoryOpen:     "repo_path must point at the working tree of an existing git repository",
	apperr.ErrWrite:              "check permissions and free space in the repository directory",
	apperr.ErrSnapshot:           "the new files are left in the working tree; commit them with git or run shurl again",
	apperr.ErrNamespaceExhausted: "raise max_attempts or set it to 0, or pass a name",
}

// hintFor returns the recovery hint for err's kind, or "".
func hintFor(err error) string {
	kind := apperr.KindOf(err)
	if kind == nil {
		return ""
	}
	return hints[kind]
}

// exitWithError prints err with its recovery hint and exits
func exitWithError(err error) {
	writeError(os.Stderr, err)
	os.Exit(1)
}

func writeError(w io.Writer, err error) {
	color.New(color.FgRed).Fprintf(w, "Error: %v\n", err)
	if hint := hintFor(err); hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
}

// exitError prints an error and exits
func exitError(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
