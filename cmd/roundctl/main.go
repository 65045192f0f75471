// Command roundctl operates a roundup database: previews round schedules,
// runs reconciliation and completion passes, imports daily records and
// issues API keys.
package main

import (
	"fmt"
	"os"

	"github.com/rpggio/roundup/internal/clock"
)

func main() {
	if err := newCLI(os.Stdout, clock.System{}).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
