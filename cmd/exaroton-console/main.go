package main

import (
	"os"

	"github.com/oremus-labs/exaroton-console/internal/consolecli"
)

func main() {
	if err := consolecli.Execute(); err != nil {
		os.Exit(1)
	}
}
