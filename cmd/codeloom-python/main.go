// Command codeloom-python is codeloom fixed to the Python grammar.
package main

import (
	"fmt"
	"os"

	"github.com/fendrel/codeloom/internal/cli"
)

func main() {
	if err := cli.NewCommand("python").Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "codeloom-python: %v\n", err)
		os.Exit(1)
	}
}
