// Command sievectl renders filter WHERE clauses and permission batch queries.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/asaidimu/go-sieve/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
