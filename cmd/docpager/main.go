package main

import (
	"os"

	"github.com/Alp4ka/docpager/cmd/docpager/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
