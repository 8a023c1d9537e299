package store

import (
	"context"
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/pricewatch/pricewatch-guard/internal/models"
)

const configPrefix = "solution-config/"

// BadgerStore keeps solution configs in an embedded Badger database.
type BadgerStore struct {
	db *badger.DB
}

// Open creates or opens the database at path.
func Open(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// OpenInMemory opens a non-persistent store, used in tests.
func OpenInMemory() (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open in-memory store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// LoadConfigs reads every stored config override, keyed by solution id.
func (s *BadgerStore) LoadConfigs(ctx context.Context) (map[string]models.SolutionConfig, error) {
	out := make(map[string]models.SolutionConfig)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(configPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			if err := item.Value(func(val []byte) error {
				var cfg models.SolutionConfig
				if err := json.Unmarshal(val, &cfg); err != nil {
					return fmt.Errorf("decode config %s: %w", item.Key(), err)
				}
				out[cfg.SolutionID] = cfg
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveConfig writes one config override.
func (s *BadgerStore) SaveConfig(ctx context.Context, cfg models.SolutionConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config %s: %w", cfg.SolutionID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(configPrefix+cfg.SolutionID), payload)
	})
}

// Close releases the database.
func (s *BadgerStore) Close() error { return s.db.Close() }
