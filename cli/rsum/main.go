package main

import (
	"os"

	rsumcmder "github.com/papercomputeco/rsum/cmd/rsum"
)

func main() {
	cmd := rsumcmder.NewRsumCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
