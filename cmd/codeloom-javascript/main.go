// Command codeloom-javascript is codeloom fixed to the JavaScript grammar.
package main

import (
	"fmt"
	"os"

	"github.com/fendrel/codeloom/internal/cli"
)

func main() {
	if err := cli.NewCommand("javascript").Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "codeloom-javascript: %v\n", err)
		os.Exit(1)
	}
}
