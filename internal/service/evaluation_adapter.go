package service

import (
	"context"
	"fmt"
	"sync"

	"courseware_backend/internal/config"
	"courseware_backend/internal/model"
	"courseware_backend/pkg/logger"

	"go.uber.org/zap"
)

// Evaluator runs a full evaluation pass.
type Evaluator interface {
	Process(ctx context.Context, req model.LearnerEvaluationRequest) (*EvaluationOutcome, error)
}

// EvaluationServiceAdapter routes evaluations to the reactive engine or the
// legacy backend according to configuration.
type EvaluationServiceAdapter struct {
	mu       sync.RWMutex
	mode     string
	reactive Evaluator
	legacy   Evaluator
}

func NewEvaluationServiceAdapter(cfg config.EvaluationConfig, reactive Evaluator) *EvaluationServiceAdapter {
	a := &EvaluationServiceAdapter{reactive: reactive}
	a.apply(cfg)
	return a
}

func (a *EvaluationServiceAdapter) Process(ctx context.Context, req model.LearnerEvaluationRequest) (*EvaluationOutcome, error) {
	a.mu.RLock()
	mode, backend := a.mode, a.reactive
	if mode == config.EvaluationModeLegacy {
		backend = a.legacy
	}
	a.mu.RUnlock()

	if backend == nil {
		return nil, fmt.Errorf("no evaluation backend for mode %q", mode)
	}
	return backend.Process(ctx, req)
}

func (a *EvaluationServiceAdapter) Mode() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// Reload is the config watcher callback.
func (a *EvaluationServiceAdapter) Reload(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		logger.Log.Error("Ignoring invalid evaluation config", zap.Error(err))
		return
	}
	previous := a.Mode()
	a.apply(cfg.Evaluation)
	if previous != cfg.Evaluation.Mode {
		logger.Log.Info("Evaluation backend switched",
			zap.String("from", previous),
			zap.String("to", cfg.Evaluation.Mode))
	}
}

func (a *EvaluationServiceAdapter) apply(cfg config.EvaluationConfig) {
	var legacy Evaluator
	if cfg.LegacyURL != "" {
		legacy = NewLegacyEvaluationClient(cfg.LegacyURL, cfg.LegacyTimeout)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.mode = cfg.Mode
	if a.mode == "" {
		a.mode = config.EvaluationModeReactive
	}
	a.legacy = legacy
}
