package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/tjfontaine/githubbot-connect/internal/storage"
)

// Store is a SQLite implementation of DeliveryStore
type Store struct {
	db *sql.DB
}

var _ storage.DeliveryStore = (*Store)(nil)

// New creates a new SQLite store
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS deliveries (
			id TEXT PRIMARY KEY,
			event TEXT NOT NULL,
			delivery_id TEXT,
			request_id TEXT,
			status TEXT NOT NULL,
			error TEXT,
			duration_ns INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_event ON deliveries(event)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_created ON deliveries(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

func (s *Store) SaveDelivery(ctx context.Context, d *storage.Delivery) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	query := `INSERT INTO deliveries (id, event, delivery_id, request_id, status, error, duration_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		d.ID, d.Event, d.DeliveryID, d.RequestID, string(d.Status), d.Error,
		int64(d.Duration), d.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert delivery: %w", err)
	}

	return nil
}

func (s *Store) GetDelivery(ctx context.Context, id string) (*storage.Delivery, error) {
	query := `SELECT id, event, delivery_id, request_id, status, error, duration_ns, created_at
		FROM deliveries WHERE id = ?`

	d, err := scanDelivery(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery: %w", err)
	}

	return d, nil
}

func (s *Store) ListDeliveries(ctx context.Context, opts storage.ListOptions) ([]*storage.Delivery, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}

	query := `SELECT id, event, delivery_id, request_id, status, error, duration_ns, created_at
		FROM deliveries`
	var args []any
	if opts.Event != "" {
		query += ` WHERE event = ?`
		args = append(args, opts.Event)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}
	defer rows.Close()

	var out []*storage.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		out = append(out, d)
	}

	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDelivery(row scanner) (*storage.Delivery, error) {
	var (
		d          storage.Delivery
		deliveryID sql.NullString
		requestID  sql.NullString
		status     string
		errMsg     sql.NullString
		durationNs int64
	)

	if err := row.Scan(&d.ID, &d.Event, &deliveryID, &requestID, &status, &errMsg, &durationNs, &d.CreatedAt); err != nil {
		return nil, err
	}

	d.DeliveryID = deliveryID.String
	d.RequestID = requestID.String
	d.Status = storage.DeliveryStatus(status)
	d.Error = errMsg.String
	d.Duration = time.Duration(durationNs)

	return &d, nil
}
