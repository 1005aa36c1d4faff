package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/reflective-ai/reflective-server/internal/config"
	"github.com/reflective-ai/reflective-server/wellnessservice"
)

func main() {
	// Optional build-target flag override (local | cloud)
	buildTarget := flag.String("build-target", "", "Override BUILD_TARGET (local, cloud)")
	flag.Parse()

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *buildTarget != "" {
		cfg.BuildTarget = *buildTarget
		cfg.DBDriver = "auto"
		if err := cfg.ResolveDefaults(); err != nil {
			log.Fatal().Err(err).Msg("Invalid build-target override")
		}
	}

	if err := wellnessservice.Run(cfg); err != nil {
		os.Exit(1)
	}
}
