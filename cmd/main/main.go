package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Errorf("Application exited with error: %v", err)
		os.Exit(1)
	}
}
