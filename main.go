package main

import (
	"fmt"
	"os"

	ethermqcli "github.com/carlmontanari/ethermq/cli"
)

func main() {
	err := ethermqcli.Entrypoint().Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err) //nolint:forbidigo

		os.Exit(1)
	}
}
