package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/0JaeminKim0/pipe-prpo/internal/pipeline"
	"github.com/0JaeminKim0/pipe-prpo/internal/policy"
	"github.com/0JaeminKim0/pipe-prpo/pkg/anthropic"
)

// initAgent wires the triage agent from config. Without an API key the
// external pricing tier is disabled and estimation falls through to the
// default price.
func initAgent() (*pipeline.Agent, error) {
	pol := policy.Default()
	if cfg.Policy.Path != "" {
		p, err := policy.Load(cfg.Policy.Path)
		if err != nil {
			return nil, eris.Wrap(err, "load policy")
		}
		pol = p
	}

	var client anthropic.Client
	if cfg.Anthropic.Key != "" {
		client = anthropic.NewClient(cfg.Anthropic.Key, anthropic.WithRPS(cfg.Anthropic.RPS))
	} else {
		zap.L().Warn("no anthropic key configured, external price estimation disabled")
	}

	return pipeline.NewAgent(cfg, pol, client, nil), nil
}
