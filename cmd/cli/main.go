package main

import (
	"os"

	"github.com/biopaper/paperpush/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
