// Command flowcanvas is the command-line companion to flowcanvasd:
// export and import workflow documents, inspect a node-type catalog, and
// print version information.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
