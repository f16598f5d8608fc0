// Command ecmawalk is a thin CLI front end over pkg/ecmawalk, mirroring
// cmd/dwscript's cobra-based command layout (root.go/run.go/version.go).
package main

import (
	"os"

	"github.com/solarframe/ecmawalk/cmd/ecmawalk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
