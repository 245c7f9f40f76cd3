// eprof - Firmware Trace Profiler
//
// eprof aggregates the instruction trace of a firmware simulation into a
// per-function hit count report and hit-count-annotated source files.
package main

import (
	"os"

	"github.com/slh-dsa/sloth/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
