package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pricewatch/pricewatch-guard/internal/models"
)

func TestApplyDisabledSolutionHasNoSideEffect(t *testing.T) {
	var invoked atomic.Int32
	e := newTestEngine(t, Options{
		ApplyHook: func(ctx context.Context, def models.SolutionDefinition, params map[string]any) error {
			invoked.Add(1)
			return nil
		},
	})
	disabled := false
	require.NoError(t, e.UpdateSolutionConfig("increase_delays", models.SolutionConfigPatch{Enabled: &disabled}))

	res := e.ApplySolution(context.Background(), "increase_delays", map[string]any{"delaySeconds": 30})
	require.False(t, res.Success)
	require.NotEmpty(t, res.Error)
	require.Equal(t, int32(0), invoked.Load())

	cfg, ok := e.GetSolutionConfig("increase_delays")
	require.True(t, ok)
	require.True(t, cfg.LastApplied.IsZero())
	require.NotContains(t, cfg.Parameters, "delaySeconds")
}

func TestApplyUnknownSolution(t *testing.T) {
	e := newTestEngine(t, Options{})
	res := e.ApplySolution(context.Background(), "does_not_exist", nil)
	require.False(t, res.Success)
	require.Contains(t, res.Error, "unknown solution")
}

func TestApplyMergesParametersAndStampsLastApplied(t *testing.T) {
	e := newTestEngine(t, Options{
		ApplyHook: func(ctx context.Context, def models.SolutionDefinition, params map[string]any) error {
			return nil
		},
	})
	require.NoError(t, e.UpdateSolutionConfig("increase_delays", models.SolutionConfigPatch{
		Parameters: map[string]any{"delaySeconds": 10, "jitter": true},
	}))

	res := e.ApplySolution(context.Background(), "increase_delays", map[string]any{"delaySeconds": 30})
	require.True(t, res.Success)
	require.False(t, res.AppliedAt.IsZero())
	require.True(t, res.RollbackAvailable)

	cfg, ok := e.GetSolutionConfig("increase_delays")
	require.True(t, ok)
	require.Equal(t, 30, cfg.Parameters["delaySeconds"])
	require.Equal(t, true, cfg.Parameters["jitter"])
	require.False(t, cfg.LastApplied.IsZero())
}

func TestApplyRestartSolutionHasNoRollback(t *testing.T) {
	e := newTestEngine(t, Options{
		ApplyHook: func(ctx context.Context, def models.SolutionDefinition, params map[string]any) error {
			return nil
		},
	})
	res := e.ApplySolution(context.Background(), "upgrade_tls_fingerprint", nil)
	require.True(t, res.Success)
	require.False(t, res.RollbackAvailable)
}

func TestApplyFailureLeavesConfigUnmodified(t *testing.T) {
	boom := errors.New("proxy pool unreachable")
	e := newTestEngine(t, Options{
		ApplyHook: func(ctx context.Context, def models.SolutionDefinition, params map[string]any) error {
			return boom
		},
	})
	res := e.ApplySolution(context.Background(), "increase_delays", map[string]any{"delaySeconds": 5})
	require.False(t, res.Success)
	require.Contains(t, res.Error, "proxy pool unreachable")

	cfg, _ := e.GetSolutionConfig("increase_delays")
	require.True(t, cfg.LastApplied.IsZero())
	require.NotContains(t, cfg.Parameters, "delaySeconds")
}

func TestApplyCancellation(t *testing.T) {
	// No hook: the engine simulates latency, which must respect ctx.
	e := newTestEngine(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := e.ApplySolution(ctx, "increase_delays", nil)
	require.False(t, res.Success)
	require.Contains(t, res.Error, "context canceled")

	cfg, _ := e.GetSolutionConfig("increase_delays")
	require.True(t, cfg.LastApplied.IsZero())
}
