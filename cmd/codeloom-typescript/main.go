// Command codeloom-typescript is codeloom fixed to the TypeScript grammar.
package main

import (
	"fmt"
	"os"

	"github.com/fendrel/codeloom/internal/cli"
)

func main() {
	if err := cli.NewCommand("typescript").Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "codeloom-typescript: %v\n", err)
		os.Exit(1)
	}
}
