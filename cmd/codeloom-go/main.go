// Command codeloom-go is codeloom fixed to the Go grammar, the small
// per-grammar front end the original Rust tool and the teacher's own
// per-provider wiring both favor over forcing every caller to spell out
// --lang go.
package main

import (
	"fmt"
	"os"

	"github.com/fendrel/codeloom/internal/cli"
)

func main() {
	if err := cli.NewCommand("go").Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "codeloom-go: %v\n", err)
		os.Exit(1)
	}
}
