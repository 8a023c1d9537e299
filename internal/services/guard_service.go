package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/pricewatch/pricewatch-guard/internal/cache"
	"github.com/pricewatch/pricewatch-guard/internal/catalog"
	"github.com/pricewatch/pricewatch-guard/internal/detect"
	"github.com/pricewatch/pricewatch-guard/internal/engine"
	"github.com/pricewatch/pricewatch-guard/internal/metrics"
	"github.com/pricewatch/pricewatch-guard/internal/models"
	"github.com/pricewatch/pricewatch-guard/internal/monitor"
	"github.com/pricewatch/pricewatch-guard/internal/store"
	"github.com/pricewatch/pricewatch-guard/internal/utils"
)

const statusTTL = 15 * time.Minute

// GuardService ties the detection, suggestion and application pieces
// together behind one surface the API layer can call.
type GuardService struct {
	logger     *slog.Logger
	engine     *engine.Engine
	controller *monitor.Controller
	cache      cache.Provider
	store      store.Store
	latencies  *utils.LatencyTracker

	mu       sync.RWMutex
	statuses map[string]models.PlatformStatus
}

// Options wires the service dependencies. Catalog and Fetcher are
// required; nil Cache and Store fall back to no-op implementations.
type Options struct {
	Logger    *slog.Logger
	Catalog   *catalog.Catalog
	Fetcher   monitor.Fetcher
	RetryCfg  monitor.Config
	Cache     cache.Provider
	Store     store.Store
	Tunables  *engine.Tunables
	ApplyHook engine.ApplyFunc
	Clock     func() time.Time
}

// New loads persisted config overrides, builds the engine and retry
// controller, and returns the assembled service.
func New(ctx context.Context, opts Options) (*GuardService, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NoopProvider{}
	}
	if opts.Store == nil {
		opts.Store = store.Noop{}
	}

	overrides, err := opts.Store.LoadConfigs(ctx)
	if err != nil {
		return nil, utils.NewAppError("services.New", "load config overrides", err)
	}
	if len(overrides) > 0 {
		logger.Info("loaded persisted solution configs", slog.Int("count", len(overrides)))
	}

	s := &GuardService{
		logger:    logger,
		cache:     opts.Cache,
		store:     opts.Store,
		latencies: utils.NewLatencyTracker(512),
		statuses:  make(map[string]models.PlatformStatus),
	}

	s.engine = engine.New(opts.Catalog, engine.Options{
		Logger:    utils.ComponentLogger(logger, "engine"),
		Tunables:  opts.Tunables,
		Overrides: overrides,
		ApplyHook: opts.ApplyHook,
		Clock:     opts.Clock,
		Persist:   s.persistConfig,
	})
	s.controller = monitor.NewController(
		utils.ComponentLogger(logger, "monitor"),
		opts.Fetcher,
		detect.NewClassifier(),
		s,
		opts.RetryCfg,
	)
	return s, nil
}

// Suggest generates grouped, ranked suggestions for a detection.
func (s *GuardService) Suggest(req models.SuggestionRequest) models.GroupedSuggestions {
	start := time.Now()
	grouped := s.engine.GenerateSuggestions(req.Detection, req.Environment)
	elapsed := time.Since(start)

	s.latencies.Observe(elapsed)
	metrics.ObserveSuggestion(elapsed)
	return grouped
}

// Apply runs one solution application.
func (s *GuardService) Apply(ctx context.Context, req models.ApplyRequest) models.SolutionApplicationResult {
	result := s.engine.ApplySolution(ctx, req.SolutionID, req.Parameters)
	switch {
	case result.Success:
		metrics.ObserveApplication("success")
	case result.Error == utils.ErrUnknownSolution.Error() || result.Error == utils.ErrSolutionDisabled.Error():
		metrics.ObserveApplication("rejected")
	default:
		metrics.ObserveApplication("failure")
	}
	return result
}

// GetConfig returns the current config for a solution.
func (s *GuardService) GetConfig(id string) (models.SolutionConfig, bool) {
	return s.engine.GetSolutionConfig(id)
}

// UpdateConfig applies a partial config update.
func (s *GuardService) UpdateConfig(id string, patch models.SolutionConfigPatch) error {
	return s.engine.UpdateSolutionConfig(id, patch)
}

// ReportOutcome records a real-world remediation outcome.
func (s *GuardService) ReportOutcome(update models.EffectivenessUpdate) {
	s.engine.UpdateEffectiveness(update)
}

// EffectivenessData returns all tracked effectiveness records.
func (s *GuardService) EffectivenessData() []models.SolutionEffectiveness {
	return s.engine.EffectivenessData()
}

// Catalog exposes the loaded solution catalog.
func (s *GuardService) Catalog() *catalog.Catalog { return s.engine.Catalog() }

// CheckTarget runs one bounded watch cycle against the target and
// records the resulting metrics.
func (s *GuardService) CheckTarget(ctx context.Context, target models.Target) models.WatchOutcome {
	outcome := s.controller.Watch(ctx, target)

	for i := 0; i < outcome.NetworkFailures; i++ {
		metrics.ObserveFetch("network_error")
	}
	classified := outcome.Attempts - outcome.NetworkFailures
	if outcome.State == models.StateSucceeded {
		metrics.ObserveFetch("clean")
		classified--
	}
	for i := 0; i < classified; i++ {
		metrics.ObserveFetch("blocked")
	}

	s.logger.Info("watch finished",
		slog.String("watch_id", outcome.WatchID),
		slog.String("platform", target.Platform),
		slog.String("state", string(outcome.State)),
		slog.Int("attempts", outcome.Attempts))
	return outcome
}

// LogDetection implements monitor.DetectionLogger. Every classified
// attempt refreshes the platform status snapshot and counters.
func (s *GuardService) LogDetection(det models.DetectionResult, platform, url string) {
	if det.IsBlocked {
		metrics.ObserveDetection(string(det.DetectionType))
	}

	status := models.PlatformStatus{
		Platform:   platform,
		Detection:  det,
		ObservedAt: det.Timestamp,
	}
	s.mu.Lock()
	s.statuses[platform] = status
	s.mu.Unlock()

	if payload, err := json.Marshal(status); err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.cache.Set(ctx, "platform-status/"+platform, payload, statusTTL); err != nil {
			s.logger.Debug("status cache write failed", slog.Any("error", err))
		}
	}
}

// PlatformStatus returns the last observed detection for a platform.
func (s *GuardService) PlatformStatus(platform string) (models.PlatformStatus, bool) {
	s.mu.RLock()
	status, ok := s.statuses[platform]
	s.mu.RUnlock()
	if ok {
		return status, true
	}

	// Fall back to the cache so restarts keep recent history.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	payload, err := s.cache.Get(ctx, "platform-status/"+platform)
	if err != nil {
		return models.PlatformStatus{}, false
	}
	if err := json.Unmarshal(payload, &status); err != nil {
		return models.PlatformStatus{}, false
	}
	return status, true
}

// SuggestionLatency reports the running average suggestion latency.
func (s *GuardService) SuggestionLatency() time.Duration {
	return s.latencies.Average()
}

// persistConfig is the engine's persistence callback. Runs off the
// caller's goroutine already, so a blocking store write is fine.
func (s *GuardService) persistConfig(id string, cfg models.SolutionConfig) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.SaveConfig(ctx, cfg); err != nil {
		s.logger.Warn("config persist failed",
			slog.String("solution_id", id),
			slog.Any("error", err))
	}
}
