package main

import (
	"log"

	"snapvault/cmd/vcs/commands"
)

func main() {
	log.SetFlags(0)
	if err := commands.Execute(); err != nil {
		log.Fatal("❌ ", err)
	}
}
