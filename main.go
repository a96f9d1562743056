package main

import (
	"log"

	"github.com/aivory/fitstudio/cmd"
	"github.com/aivory/fitstudio/config"
)

func main() {
	log.Printf("fitstudio %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
