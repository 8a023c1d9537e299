package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pricewatch/pricewatch-guard/internal/catalog"
	"github.com/pricewatch/pricewatch-guard/internal/models"
	"github.com/pricewatch/pricewatch-guard/internal/utils"
)

// PersistFunc receives a config snapshot after every mutation. It is
// invoked on a separate goroutine so persistence never blocks callers.
type PersistFunc func(id string, cfg models.SolutionConfig)

type effKey struct {
	solutionID    string
	detectionType models.DetectionType
	platform      string
}

// Engine owns the catalog plus the session-mutable configuration and
// effectiveness state. A single lock guards both maps so suggestion
// generation observes a consistent snapshot.
type Engine struct {
	logger    *slog.Logger
	catalog   *catalog.Catalog
	tunables  Tunables
	now       func() time.Time
	applyHook ApplyFunc
	persist   PersistFunc

	mu            sync.RWMutex
	configs       map[string]*models.SolutionConfig
	effectiveness map[effKey]*models.SolutionEffectiveness
}

// Options configures engine construction.
type Options struct {
	Logger *slog.Logger
	// Tunables overrides the heuristic defaults when non-nil.
	Tunables *Tunables
	// Overrides are persisted SolutionConfig values applied over the
	// catalog-derived defaults at startup.
	Overrides map[string]models.SolutionConfig
	// Persist is notified (asynchronously) after config mutations.
	Persist PersistFunc
	// ApplyHook performs the actual remediation work. When nil the
	// engine simulates work with complexity-scaled latency.
	ApplyHook ApplyFunc
	// Clock overrides the timestamp source for tests.
	Clock func() time.Time
}

// New seeds per-solution configs from the catalog and returns a ready engine.
func New(cat *catalog.Catalog, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tunables := DefaultTunables()
	if opts.Tunables != nil {
		tunables = *opts.Tunables
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	e := &Engine{
		logger:        logger,
		catalog:       cat,
		tunables:      tunables,
		now:           clock,
		applyHook:     opts.ApplyHook,
		persist:       opts.Persist,
		configs:       make(map[string]*models.SolutionConfig, cat.Len()),
		effectiveness: make(map[effKey]*models.SolutionEffectiveness),
	}

	for _, def := range cat.All() {
		if override, ok := opts.Overrides[def.ID]; ok {
			cfg := override
			cfg.SolutionID = def.ID
			if cfg.Parameters == nil {
				cfg.Parameters = make(map[string]any)
			}
			e.configs[def.ID] = &cfg
			continue
		}
		e.configs[def.ID] = &models.SolutionConfig{
			SolutionID: def.ID,
			Enabled:    true,
			AutoApply:  def.CanAutoApply,
			Parameters: make(map[string]any),
		}
	}

	return e
}

// Catalog exposes the read-only solution catalog.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// GetSolutionConfig returns a copy of the current config for id.
func (e *Engine) GetSolutionConfig(id string) (models.SolutionConfig, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	cfg, ok := e.configs[id]
	if !ok {
		return models.SolutionConfig{}, false
	}
	return copyConfig(cfg), true
}

// UpdateSolutionConfig applies a partial update to one solution config
// and schedules persistence. Unknown ids are reported, not raised.
func (e *Engine) UpdateSolutionConfig(id string, patch models.SolutionConfigPatch) error {
	e.mu.Lock()
	cfg, ok := e.configs[id]
	if !ok {
		e.mu.Unlock()
		return utils.NewAppError("engine.UpdateSolutionConfig", id, utils.ErrUnknownSolution)
	}
	if patch.Enabled != nil {
		cfg.Enabled = *patch.Enabled
	}
	if patch.AutoApply != nil {
		cfg.AutoApply = *patch.AutoApply
	}
	if len(patch.Parameters) > 0 {
		if cfg.Parameters == nil {
			cfg.Parameters = make(map[string]any, len(patch.Parameters))
		}
		for k, v := range patch.Parameters {
			cfg.Parameters[k] = v
		}
	}
	snapshot := copyConfig(cfg)
	e.mu.Unlock()

	e.schedulePersist(id, snapshot)
	return nil
}

// Configs returns copies of every solution config, keyed by id.
func (e *Engine) Configs() map[string]models.SolutionConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]models.SolutionConfig, len(e.configs))
	for id, cfg := range e.configs {
		out[id] = copyConfig(cfg)
	}
	return out
}

func (e *Engine) schedulePersist(id string, cfg models.SolutionConfig) {
	if e.persist == nil {
		return
	}
	go e.persist(id, cfg)
}

func copyConfig(cfg *models.SolutionConfig) models.SolutionConfig {
	out := *cfg
	out.Parameters = make(map[string]any, len(cfg.Parameters))
	for k, v := range cfg.Parameters {
		out.Parameters[k] = v
	}
	return out
}
