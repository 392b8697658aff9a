// Package main is the flowcheck entry point.
//
// @title flowcheck API
// @version 1.0
// @description Fact-check caching, goal recommendations and progress forecasts.
// @BasePath /
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/flowcheck/internal/cli"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	if err := cli.Execute(Version); err != nil {
		log.Error().Err(err).Msg("flowcheck failed")
		os.Exit(1)
	}
}
