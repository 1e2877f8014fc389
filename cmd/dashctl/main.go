// Package main is the entry point for the dashctl binary.
package main

import (
	"os"

	"crash-dash/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
