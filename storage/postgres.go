package storage

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

type PSQLStorage struct {
	db *sql.DB
}

// Creates a new Postgres Storage using the provided connection string.
//
// If clearDB is true, the database will be cleared on startup. You
// probably only want this for testing.
func NewPSQLStorage(connStr string, clearDB bool) (*PSQLStorage, error) {

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if clearDB {
		_, err = db.Exec(`
DROP TABLE IF EXISTS stop_request;
DROP TABLE IF EXISTS stop_consumer;
`)
		if err != nil {
			return nil, fmt.Errorf("clearing db: %w", err)
		}
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS stop_request (
    stop_codes TEXT NOT NULL,
    refreshed_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (stop_codes)
);

CREATE TABLE IF NOT EXISTS stop_consumer (
    name TEXT NOT NULL,
    stop_codes TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (name, stop_codes)
);`)
	if err != nil {
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &PSQLStorage{
		db: db,
	}, nil
}

func (s *PSQLStorage) Close() error {
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("failed to close db: %w", err)
	}
	return nil
}

func (s *PSQLStorage) ListStopRequests(stopCode string) ([]StopRequest, error) {
	rows, err := s.db.Query(listStopRequestsQuery)
	if err != nil {
		return nil, fmt.Errorf("listing stop requests: %w", err)
	}
	defer rows.Close()

	reqs, err := scanStopRequests(rows)
	if err != nil {
		return nil, err
	}

	return filterStopRequests(reqs, stopCode), nil
}

func (s *PSQLStorage) WriteStopRequest(req StopRequest) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	query := `
INSERT INTO stop_request (stop_codes, refreshed_at)
VALUES ($1, $2)
ON CONFLICT (stop_codes)`

	if req.RefreshedAt.IsZero() {
		query += " DO NOTHING"
	} else {
		query += " DO UPDATE SET refreshed_at = excluded.refreshed_at"
	}

	key := requestKey(req.StopCodes)

	_, err = tx.Exec(query, key, req.RefreshedAt.UTC())
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("inserting stop request: %w", err)
	}

	if len(req.Consumers) > 0 {
		// All consumers go in a single statement.
		names := make([]string, 0, len(req.Consumers))
		created := make([]string, 0, len(req.Consumers))
		updated := make([]string, 0, len(req.Consumers))
		for _, con := range req.Consumers {
			names = append(names, con.Name)
			created = append(created, con.CreatedAt.UTC().Format(pqTimeFormat))
			updated = append(updated, con.UpdatedAt.UTC().Format(pqTimeFormat))
		}

		_, err = tx.Exec(`
INSERT INTO stop_consumer (name, stop_codes, created_at, updated_at)
SELECT c.name, $1, c.created_at::timestamptz, c.updated_at::timestamptz
FROM unnest($2::text[], $3::text[], $4::text[]) AS c(name, created_at, updated_at)
ON CONFLICT (name, stop_codes) DO UPDATE SET
    updated_at = excluded.updated_at`,
			key, pq.Array(names), pq.Array(created), pq.Array(updated))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting stop consumers: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *PSQLStorage) DeleteStopRequest(stopCodes []string) error {
	_, err := s.db.Exec(`
WITH deleted AS (
    DELETE FROM stop_consumer WHERE stop_codes = $1
)
DELETE FROM stop_request WHERE stop_codes = $1`, requestKey(stopCodes))
	if err != nil {
		return fmt.Errorf("deleting stop request: %w", err)
	}
	return nil
}

const pqTimeFormat = "2006-01-02T15:04:05.999999Z07:00"
