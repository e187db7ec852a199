// Command refassist indexes local documentation into a SQLite vector store
// and answers questions about it.
package main

import (
	"os"

	"github.com/refassist/refassist-cli/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
