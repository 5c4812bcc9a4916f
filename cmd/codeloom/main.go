// Command codeloom is the universal front end: it accepts --lang and
// dispatches to whichever of the four supported grammars the caller asks
// for, the way the teacher's cmd/morfx accepts --lang rather than being
// built once per language.
package main

import (
	"fmt"
	"os"

	"github.com/fendrel/codeloom/internal/cli"
)

func main() {
	if err := cli.NewCommand("").Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "codeloom: %v\n", err)
		os.Exit(1)
	}
}
