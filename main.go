package main

import (
	"os"

	"github.com/ndelorme/cv-worth/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
