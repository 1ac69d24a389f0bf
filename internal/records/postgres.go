package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresStore keeps every collection in a single jsonb documents
// table. The storefront treats the hosted data collaborator as a
// generic record CRUD service, so one table per collection would
// duplicate schema it does not own.
type PostgresStore struct {
	db *sql.DB
}

// ConnectPostgres opens and pings a PostgreSQL connection.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	if err := s.createTable(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) createTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create records table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, collection string, rec Record) (Record, error) {
	stored := cloneRecord(rec)
	if stored.ID() == "" {
		stored["id"] = uuid.New().String()
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (collection, id, data, updated_at)
		VALUES ($1, $2, $3, $4)
	`, collection, stored.ID(), data, time.Now())
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", collection, err)
	}
	return stored, nil
}

func (s *PostgresStore) Select(ctx context.Context, collection string, filter Filter) ([]Record, error) {
	query := `SELECT data FROM records WHERE collection = $1`
	args := []any{collection}

	if len(filter) > 0 {
		filterJSON, err := json.Marshal(filter)
		if err != nil {
			return nil, fmt.Errorf("marshal filter: %w", err)
		}
		query += ` AND data @> $2`
		args = append(args, filterJSON)
	}
	query += ` ORDER BY updated_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", collection, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, changes Record) (Record, error) {
	current, err := s.get(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	for k, v := range changes {
		if k == "id" {
			continue
		}
		current[k] = v
	}

	data, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE records SET data = $1, updated_at = $2
		WHERE collection = $3 AND id = $4
	`, data, time.Now(), collection, id)
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return current, nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM records WHERE collection = $1 AND id = $2
	`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) get(ctx context.Context, collection, id string) (Record, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM records WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec, nil
}
