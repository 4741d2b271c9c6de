package main

import (
	"os"

	reportkitcmder "github.com/papercomputeco/reportkit/cmd/reportkit"
)

func main() {
	cmd := reportkitcmder.NewReportkitCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
