package main

import (
	"github.com/rs/zerolog/log"
	"os"
)

func main() {
	err := rootCmd().Execute()
	if err != nil {
		log.Error().Err(err).Send()
		os.Exit(1)
	}
}
