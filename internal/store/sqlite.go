package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	_ "modernc.org/sqlite"

	"basesignals/internal/model"
)

type sqliteStore struct {
	db *sql.DB
}

func NewSQLite(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:basesignals.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_signals (
			address TEXT PRIMARY KEY,
			intent TEXT,
			signals_json TEXT NOT NULL,
			last_updated INTEGER NOT NULL
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

func (s *sqliteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *sqliteStore) Put(ctx context.Context, signals model.UserSignals) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_signals (address, intent, signals_json, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET
			intent = excluded.intent,
			signals_json = excluded.signals_json,
			last_updated = excluded.last_updated`,
		strings.ToLower(signals.Address),
		signals.PrimaryIntent,
		encodeJSON(signals.Signals),
		signals.LastUpdated,
	)
	return err
}

func (s *sqliteStore) Get(ctx context.Context, address string) (model.UserSignals, bool, error) {
	if s.db == nil {
		return model.UserSignals{}, false, nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT address, intent, signals_json, last_updated FROM user_signals WHERE address = ?`,
		strings.ToLower(address))
	return scanUserSignals(row)
}

func (s *sqliteStore) All(ctx context.Context) ([]model.UserSignals, error) {
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserSignals(row rowScanner) (model.UserSignals, bool, error) {
	var signals model.UserSignals
	var signalsJSON string
	err := row.Scan(&signals.Address, &signals.PrimaryIntent, &signalsJSON, &signals.LastUpdated)
	if err == sql.ErrNoRows {
		return model.UserSignals{}, false, nil
	}
	if err != nil {
		return model.UserSignals{}, false, err
	}
	if err := json.Unmarshal([]byte(signalsJSON), &signals.Signals); err != nil {
		return model.UserSignals{}, false, err
	}
	return signals, true, nil
}
