package main

import (
	"os"

	"finitefield.org/travel-web/cmd/travelctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
