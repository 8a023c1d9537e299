package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pricewatch/pricewatch-guard/internal/models"
	"github.com/pricewatch/pricewatch-guard/internal/utils"
)

// ApplyFunc performs the remediation work for one solution.
type ApplyFunc func(ctx context.Context, def models.SolutionDefinition, params map[string]any) error

// ApplySolution applies the identified solution. Precondition failures
// (unknown id, disabled config) return a failed result with no side
// effect. On success the supplied parameters are shallow-merged over the
// stored config and lastApplied is stamped.
func (e *Engine) ApplySolution(ctx context.Context, id string, params map[string]any) models.SolutionApplicationResult {
	result := models.SolutionApplicationResult{
		ApplicationID: uuid.NewString(),
		SolutionID:    id,
		AppliedAt:     e.now(),
		Parameters:    params,
	}

	e.mu.RLock()
	def, known := e.catalog.Get(id)
	var enabled bool
	if cfg, ok := e.configs[id]; ok {
		enabled = cfg.Enabled
	}
	e.mu.RUnlock()

	if !known {
		result.Message = fmt.Sprintf("no solution %q in catalog", id)
		result.Error = utils.ErrUnknownSolution.Error()
		return result
	}
	if !enabled {
		result.Message = fmt.Sprintf("solution %q is disabled", id)
		result.Error = utils.ErrSolutionDisabled.Error()
		return result
	}

	if err := e.runApplication(ctx, def, params); err != nil {
		e.logger.Warn("solution application failed",
			slog.String("solution", id), slog.Any("error", err))
		result.Message = "application failed; configuration left unchanged"
		result.Error = err.Error()
		return result
	}

	e.mu.Lock()
	cfg := e.configs[id]
	if cfg.Parameters == nil {
		cfg.Parameters = make(map[string]any, len(params))
	}
	for k, v := range params {
		cfg.Parameters[k] = v
	}
	cfg.LastApplied = e.now()
	snapshot := copyConfig(cfg)
	e.mu.Unlock()

	e.schedulePersist(id, snapshot)

	result.Success = true
	result.Message = fmt.Sprintf("applied %s", def.Name)
	result.AppliedAt = snapshot.LastApplied
	result.Parameters = snapshot.Parameters
	result.RollbackAvailable = !def.RequiresRestart
	return result
}

// runApplication executes the hook when configured, otherwise simulates
// work with latency scaled by implementation complexity. Cancellable.
func (e *Engine) runApplication(ctx context.Context, def models.SolutionDefinition, params map[string]any) error {
	if e.applyHook != nil {
		return e.applyHook(ctx, def, params)
	}

	latency, ok := e.tunables.ApplyLatencies[def.ImplementationComplexity]
	if !ok {
		latency = 100 * time.Millisecond
	}
	timer := time.NewTimer(latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
