package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteConfig struct {
	OnDisk    bool
	Directory string
}

type SQLiteStorage struct {
	SQLiteConfig

	db *sql.DB
}

func NewSQLiteStorage(cfg ...SQLiteConfig) (*SQLiteStorage, error) {
	onDisk := false
	directory := ""
	if len(cfg) > 0 {
		onDisk = cfg[0].OnDisk
		directory = cfg[0].Directory
	}

	sourceName := ":memory:"
	if onDisk {
		sourceName = filepath.Join(directory, "mybus.db")
	}

	db, err := sql.Open("sqlite3", sourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Each connection to :memory: gets its own database.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS stop_request (
    stop_codes TEXT NOT NULL,
    refreshed_at TIMESTAMP NOT NULL,
PRIMARY KEY (stop_codes)
);

CREATE TABLE IF NOT EXISTS stop_consumer (
    name TEXT NOT NULL,
    stop_codes TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
PRIMARY KEY (name, stop_codes)
);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &SQLiteStorage{
		SQLiteConfig: SQLiteConfig{
			OnDisk:    onDisk,
			Directory: directory,
		},
		db: db,
	}, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) ListStopRequests(stopCode string) ([]StopRequest, error) {
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

// Shared by the SQL backends. Filtering by stop code happens after
// the rows are scanned.
const listStopRequestsQuery = `
SELECT
    req.stop_codes,
    req.refreshed_at,
    con.name,
    con.created_at,
    con.updated_at
FROM stop_request req
LEFT JOIN stop_consumer con ON req.stop_codes = con.stop_codes
ORDER BY req.stop_codes, con.name`

// Collects the rows of a stop_request/stop_consumer join, ordered by
// stop codes.
func scanStopRequests(rows *sql.Rows) ([]StopRequest, error) {
	reqs := []StopRequest{}
	for rows.Next() {
		var req StopRequest
		var key string
		var name sql.NullString
		var createdAt sql.NullTime
		var updatedAt sql.NullTime
		err := rows.Scan(
			&key,
			&req.RefreshedAt,
			&name,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning stop request: %w", err)
		}
		req.StopCodes = splitRequestKey(key)
		req.RefreshedAt = req.RefreshedAt.UTC()

		if len(reqs) == 0 || requestKey(reqs[len(reqs)-1].StopCodes) != key {
			reqs = append(reqs, req)
		}
		if name.Valid {
			last := &reqs[len(reqs)-1]
			last.Consumers = append(last.Consumers, StopConsumer{
				Name:      name.String,
				CreatedAt: createdAt.Time.UTC(),
				UpdatedAt: updatedAt.Time.UTC(),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stop requests: %w", err)
	}

	return reqs, nil
}

func (s *SQLiteStorage) WriteStopRequest(req StopRequest) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	query := `
INSERT INTO stop_request (stop_codes, refreshed_at)
VALUES (?, ?)
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

	for _, con := range req.Consumers {
		_, err = tx.Exec(`
INSERT INTO stop_consumer (name, stop_codes, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (name, stop_codes) DO UPDATE SET
    updated_at = excluded.updated_at`,
			con.Name, key, con.CreatedAt.UTC(), con.UpdatedAt.UTC())
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting stop consumer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) DeleteStopRequest(stopCodes []string) error {
	key := requestKey(stopCodes)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	_, err = tx.Exec(`DELETE FROM stop_consumer WHERE stop_codes = ?`, key)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("deleting stop consumers: %w", err)
	}

	_, err = tx.Exec(`DELETE FROM stop_request WHERE stop_codes = ?`, key)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("deleting stop request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
