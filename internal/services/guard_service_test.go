package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pricewatch/pricewatch-guard/internal/catalog"
	"github.com/pricewatch/pricewatch-guard/internal/models"
	"github.com/pricewatch/pricewatch-guard/internal/monitor"
	"github.com/pricewatch/pricewatch-guard/internal/repo"
	"github.com/pricewatch/pricewatch-guard/internal/store"
	"github.com/pricewatch/pricewatch-guard/internal/utils"
)

type stubFetcher struct {
	pages []repo.PageResult
	calls int
}

func (f *stubFetcher) Fetch(ctx context.Context, url string, headers map[string]string) (repo.PageResult, error) {
	i := f.calls
	f.calls++
	if i >= len(f.pages) {
		return repo.PageResult{StatusCode: 200, Body: "ok"}, nil
	}
	return f.pages[i], nil
}

func newTestService(t *testing.T, fetcher monitor.Fetcher, st store.Store) *GuardService {
	t.Helper()
	cat, err := catalog.Load("", utils.NewLogger("error", false))
	require.NoError(t, err)

	svc, err := New(context.Background(), Options{
		Logger:  utils.NewLogger("error", false),
		Catalog: cat,
		Fetcher: fetcher,
		Store:   st,
		RetryCfg: monitor.Config{
			MaxAttempts:       3,
			BaseDelay:         time.Millisecond,
			NetworkRetryDelay: time.Millisecond,
		},
		ApplyHook: func(ctx context.Context, def models.SolutionDefinition, params map[string]any) error {
			return nil
		},
	})
	require.NoError(t, err)
	return svc
}

func TestCheckTargetPublishesPlatformStatus(t *testing.T) {
	fetcher := &stubFetcher{pages: []repo.PageResult{
		{StatusCode: 429, Body: "too many requests"},
		{StatusCode: 200, Body: "<html>price</html>"},
	}}
	svc := newTestService(t, fetcher, nil)

	outcome := svc.CheckTarget(context.Background(), models.Target{Platform: "amazon", URL: "https://example.test/p/1"})
	require.Equal(t, models.StateSucceeded, outcome.State)
	require.Equal(t, 2, outcome.Attempts)

	status, ok := svc.PlatformStatus("amazon")
	require.True(t, ok)
	require.Equal(t, "amazon", status.Platform)
	// The last classified attempt was clean.
	require.False(t, status.Detection.IsBlocked)

	_, ok = svc.PlatformStatus("walmart")
	require.False(t, ok)
}

func TestSuggestTracksLatency(t *testing.T) {
	svc := newTestService(t, &stubFetcher{}, nil)

	grouped := svc.Suggest(models.SuggestionRequest{
		Detection: models.DetectionResult{
			IsBlocked:     true,
			DetectionType: models.DetectionRateLimit,
			Confidence:    0.9,
			Platform:      "amazon",
		},
	})
	require.Positive(t, grouped.Total())
	require.Positive(t, svc.SuggestionLatency())
}

func TestConfigUpdatesReachTheStore(t *testing.T) {
	st, err := store.OpenInMemory()
	require.NoError(t, err)
	defer st.Close()

	svc := newTestService(t, &stubFetcher{}, st)

	enabled := false
	require.NoError(t, svc.UpdateConfig("increase_delays", models.SolutionConfigPatch{Enabled: &enabled}))

	// Persistence runs asynchronously.
	require.Eventually(t, func() bool {
		cfgs, err := st.LoadConfigs(context.Background())
		if err != nil {
			return false
		}
		cfg, ok := cfgs["increase_delays"]
		return ok && !cfg.Enabled
	}, time.Second, 10*time.Millisecond)
}

func TestPersistedConfigsSurviveRestart(t *testing.T) {
	st, err := store.OpenInMemory()
	require.NoError(t, err)
	defer st.Close()

	svc := newTestService(t, &stubFetcher{}, st)
	enabled := false
	require.NoError(t, svc.UpdateConfig("increase_delays", models.SolutionConfigPatch{Enabled: &enabled}))
	require.Eventually(t, func() bool {
		cfgs, _ := st.LoadConfigs(context.Background())
		_, ok := cfgs["increase_delays"]
		return ok
	}, time.Second, 10*time.Millisecond)

	restarted := newTestService(t, &stubFetcher{}, st)
	cfg, ok := restarted.GetConfig("increase_delays")
	require.True(t, ok)
	require.False(t, cfg.Enabled)
}

func TestApplyAndReportOutcomeRoundTrip(t *testing.T) {
	svc := newTestService(t, &stubFetcher{}, nil)

	result := svc.Apply(context.Background(), models.ApplyRequest{
		SolutionID: "increase_delays",
		Parameters: map[string]any{"delaySeconds": 20},
	})
	require.True(t, result.Success)

	svc.ReportOutcome(models.EffectivenessUpdate{
		SolutionID:     "increase_delays",
		DetectionType:  models.DetectionRateLimit,
		Platform:       "amazon",
		Success:        true,
		ResponseTimeMs: 180,
	})

	data := svc.EffectivenessData()
	require.Len(t, data, 1)
	require.Equal(t, 1, data[0].SuccessCount)
}
