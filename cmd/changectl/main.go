package main

import (
	"os"

	"github.com/shiporsink/change/pkg/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command execution failed")
		os.Exit(1)
	}
}
