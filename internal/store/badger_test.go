package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pricewatch/pricewatch-guard/internal/models"
)

func TestBadgerStoreRoundTrip(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	cfg := models.SolutionConfig{
		SolutionID:    "increase_delays",
		Enabled:       false,
		AutoApply:     true,
		Parameters:    map[string]any{"delaySeconds": 30.0},
		LastApplied:   time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		SuccessCount:  4,
		FailureCount:  1,
		Effectiveness: 80,
	}
	require.NoError(t, s.SaveConfig(context.Background(), cfg))
	require.NoError(t, s.SaveConfig(context.Background(), models.SolutionConfig{SolutionID: "pause_platform", Enabled: true}))

	loaded, err := s.LoadConfigs(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	got := loaded["increase_delays"]
	require.False(t, got.Enabled)
	require.Equal(t, 30.0, got.Parameters["delaySeconds"])
	require.Equal(t, 4, got.SuccessCount)
	require.Equal(t, 80.0, got.Effectiveness)
}

func TestBadgerStoreOverwrite(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveConfig(context.Background(), models.SolutionConfig{SolutionID: "x", Enabled: true}))
	require.NoError(t, s.SaveConfig(context.Background(), models.SolutionConfig{SolutionID: "x", Enabled: false}))

	loaded, err := s.LoadConfigs(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.False(t, loaded["x"].Enabled)
}

func TestNoopStore(t *testing.T) {
	var s Store = Noop{}
	loaded, err := s.LoadConfigs(context.Background())
	require.NoError(t, err)
	require.Empty(t, loaded)
	require.NoError(t, s.SaveConfig(context.Background(), models.SolutionConfig{SolutionID: "x"}))
	require.NoError(t, s.Close())
}
