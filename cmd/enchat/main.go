package main

import (
	"os"

	"enchat/cmd/enchat/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
