package store

import (
	"context"

	"github.com/pricewatch/pricewatch-guard/internal/models"
)

// Store persists solution configuration overrides between sessions.
type Store interface {
	LoadConfigs(ctx context.Context) (map[string]models.SolutionConfig, error)
	SaveConfig(ctx context.Context, cfg models.SolutionConfig) error
	Close() error
}

// Noop implements Store without persisting anything.
type Noop struct{}

// LoadConfigs returns no overrides.
func (Noop) LoadConfigs(context.Context) (map[string]models.SolutionConfig, error) {
	return nil, nil
}

// SaveConfig discards the config.
func (Noop) SaveConfig(context.Context, models.SolutionConfig) error { return nil }

// Close is a no-op.
func (Noop) Close() error { return nil }
