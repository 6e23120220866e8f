package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"basesignals/internal/model"
)

type postgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/basesignals?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &postgresStore{db: db}, nil
}

func (s *postgresStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_signals (
			address TEXT PRIMARY KEY,
			intent TEXT,
			signals_json JSONB NOT NULL,
			last_updated BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_signals_updated ON user_signals(last_updated)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *postgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *postgresStore) Put(ctx context.Context, signals model.UserSignals) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_signals (address, intent, signals_json, last_updated)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO UPDATE SET
			intent = EXCLUDED.intent,
			signals_json = EXCLUDED.signals_json,
			last_updated = EXCLUDED.last_updated`,
		strings.ToLower(signals.Address),
		signals.PrimaryIntent,
		encodeJSON(signals.Signals),
		signals.LastUpdated,
	)
	return err
}

func (s *postgresStore) Get(ctx context.Context, address string) (model.UserSignals, bool, error) {
	if s.db == nil {
		return model.UserSignals{}, false, nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT address, intent, signals_json, last_updated FROM user_signals WHERE address = $1`,
		strings.ToLower(address))
	return scanUserSignals(row)
}

func (s *postgresStore) All(ctx context.Context) ([]model.UserSignals, error) {
	if s.db == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT address, intent, signals_json, last_updated FROM user_signals`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UserSignals
	for rows.Next() {
		var signals model.UserSignals
		var signalsJSON string
		if err := rows.Scan(&signals.Address, &signals.PrimaryIntent, &signalsJSON, &signals.LastUpdated); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(signalsJSON), &signals.Signals); err != nil {
			return nil, err
		}
		out = append(out, signals)
	}
	return out, rows.Err()
}
