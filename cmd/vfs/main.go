package main

import (
	"log"

	"vaultfs/cmd/vfs/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		log.Fatal(err)
	}
}
