package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pricewatch/pricewatch-guard/internal/models"
)

func TestConfigsSeededFromCatalogDefaults(t *testing.T) {
	e := newTestEngine(t, Options{})

	cfg, ok := e.GetSolutionConfig("increase_delays")
	require.True(t, ok)
	require.True(t, cfg.Enabled)
	require.True(t, cfg.AutoApply) // canAutoApply in the catalog

	manual, ok := e.GetSolutionConfig("solve_captcha_manually")
	require.True(t, ok)
	require.False(t, manual.AutoApply)
}

func TestOverridesApplyAtStartup(t *testing.T) {
	e := newTestEngine(t, Options{
		Overrides: map[string]models.SolutionConfig{
			"increase_delays": {Enabled: false, Parameters: map[string]any{"delaySeconds": 45.0}},
		},
	})
	cfg, ok := e.GetSolutionConfig("increase_delays")
	require.True(t, ok)
	require.False(t, cfg.Enabled)
	require.Equal(t, 45.0, cfg.Parameters["delaySeconds"])
}

func TestUpdateSolutionConfigUnknownID(t *testing.T) {
	e := newTestEngine(t, Options{})
	err := e.UpdateSolutionConfig("nope", models.SolutionConfigPatch{})
	require.Error(t, err)
}

func TestUpdateSolutionConfigPersistsAsynchronously(t *testing.T) {
	persisted := make(chan models.SolutionConfig, 1)
	e := newTestEngine(t, Options{
		Persist: func(id string, cfg models.SolutionConfig) {
			persisted <- cfg
		},
	})

	enabled := false
	require.NoError(t, e.UpdateSolutionConfig("increase_delays", models.SolutionConfigPatch{Enabled: &enabled}))

	select {
	case cfg := <-persisted:
		require.False(t, cfg.Enabled)
		require.Equal(t, "increase_delays", cfg.SolutionID)
	case <-time.After(2 * time.Second):
		t.Fatalf("persist callback never invoked")
	}
}

func TestGetSolutionConfigReturnsCopy(t *testing.T) {
	e := newTestEngine(t, Options{})
	cfg, _ := e.GetSolutionConfig("increase_delays")
	cfg.Parameters["mutated"] = true

	again, _ := e.GetSolutionConfig("increase_delays")
	require.NotContains(t, again.Parameters, "mutated")
}

func TestConcurrentConfigUpdatesAndSuggestions(t *testing.T) {
	e := newTestEngine(t, Options{})
	det := blockedDetection(models.DetectionRateLimit, 0.9)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(flip bool) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				enabled := flip
				_ = e.UpdateSolutionConfig("aggressive_backoff", models.SolutionConfigPatch{Enabled: &enabled})
				_ = e.GenerateSuggestions(det, models.SuggestionEnvironment{IsDesktop: true})
			}
		}(w%2 == 0)
	}
	wg.Wait()
}
