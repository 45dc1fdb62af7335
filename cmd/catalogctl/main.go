package main

import (
	"os"

	"github.com/dukerupert/flipcart/cmd/catalogctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
