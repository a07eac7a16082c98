package api

import (
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/config"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/infrastructure"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/prompts"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/workflow"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Timeouts   workflow.Timeouts
	Runs       int
	Verify     bool
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	timeouts := workflow.DefaultTimeouts()
	timeouts.Classifier = cfg.Classifier.TimeoutDuration()
	if cfg.Reasoning.Enabled() {
		timeouts.Reasoning = cfg.Reasoning.TimeoutDuration()
	}
	timeouts.Probe = cfg.Pipeline.ProbeTimeoutDuration()
	timeouts.Download = cfg.Pipeline.DownloadTimeoutDuration()
	timeouts.Chat = cfg.Pipeline.ChatTimeoutDuration()

	return &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
		Timeouts:       timeouts,
		Runs:           cfg.Pipeline.EnsembleRuns,
		Verify:         cfg.Pipeline.VerifyEnabled(),
	}
}

// Workflow builds the pipeline runtime over the shared agents and storage.
// A disabled reasoner stays a nil interface.
func (r *Runtime) Workflow(source prompts.Source) *workflow.Runtime {
	rt := &workflow.Runtime{
		Classifier: r.Classifier,
		Store:      r.Storage,
		Catalog:    r.Catalog,
		Prompts:    source,
		Metrics:    r.Metrics,
		Logger:     r.Logger,
		Timeouts:   r.Timeouts,
		Runs:       r.Runs,
		Verify:     r.Verify,
	}
	if r.Reasoner != nil {
		rt.Reasoner = r.Reasoner
	}
	return rt
}
