package main

import (
	"os"

	"github.com/syssam/dynrepo/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
