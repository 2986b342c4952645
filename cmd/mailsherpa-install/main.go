// Command mailsherpa-install downloads the mailsherpa binary for the current
// platform into the working directory.
//
// Run without arguments it performs the whole installation. On failure it
// prints a single "An error occurred: ..." line and exits with a status that
// identifies the failed step.
package main

import (
	"os"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
