// Command efql compiles and runs eFaps queries.
package main

import (
	"fmt"
	"os"

	"github.com/efaps/efql/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "efql:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
