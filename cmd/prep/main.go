package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/anrid/japan-census/pkg/census"
	"github.com/anrid/japan-census/pkg/config"
)

func main() {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	p := census.NewPipeline(cfg.PipelineOptions(), cfg.Rules, logger)

	t, err := p.Run()
	if err != nil {
		logger.Fatal("Pipeline failed", zap.Error(err))
	}
	if err := p.Write(t); err != nil {
		logger.Fatal("Could not write output", zap.Error(err))
	}
}
