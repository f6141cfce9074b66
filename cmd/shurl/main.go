// Command shurl creates short links in a git-backed static site.
package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/kilupskalvis/shurl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
