package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"basesignals/internal/config"
	"basesignals/internal/model"
)

// Store keeps the latest signal bundle per address. The pipeline only ever
// needs get-by-key, put-by-key and iterate-all, so a real database can stand
// in without touching the core.
type Store interface {
	Init(ctx context.Context) error
	Close() error
	Put(ctx context.Context, signals model.UserSignals) error
	Get(ctx context.Context, address string) (model.UserSignals, bool, error)
	All(ctx context.Context) ([]model.UserSignals, error)
}

// NewStore builds the configured persistent store, or the in-memory store
// when persistence is disabled.
func NewStore(cfg config.StorageConfig) (Store, error) {
	if !cfg.Enabled {
		return NewMemory(), nil
	}
	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		return NewSQLite(cfg.DSN)
	case "postgres", "postgresql":
		return NewPostgres(cfg.DSN)
	default:
		return nil, errors.New("unsupported storage driver")
	}
}

func encodeJSON(value any) string {
	data, _ := json.Marshal(value)
	return string(data)
}
