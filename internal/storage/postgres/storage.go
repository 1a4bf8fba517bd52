package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/ecutune/ecutune/internal/domain/errors"
	"github.com/ecutune/ecutune/internal/domain/model"
	"github.com/ecutune/ecutune/internal/domain/repository"
)

// Pool is the subset of pgxpool.Pool the storage relies on.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage acts as the order store backed by PostgreSQL.
type Storage struct {
	pool   Pool
	logger *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Orders returns the order repository bound to this storage.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            owner_identity TEXT NOT NULL,
            vehicle JSONB NOT NULL DEFAULT '{}',
            options JSONB NOT NULL DEFAULT '[]',
            comments TEXT NOT NULL DEFAULT '',
            original_name TEXT NOT NULL,
            original_url TEXT NOT NULL,
            original_size BIGINT NOT NULL DEFAULT 0,
            result_name TEXT NOT NULL DEFAULT '',
            result_url TEXT NOT NULL DEFAULT '',
            result_size BIGINT NOT NULL DEFAULT 0,
            status TEXT NOT NULL,
            payment_provider TEXT NOT NULL DEFAULT '',
            payment_external_id TEXT NOT NULL DEFAULT '',
            payment_status TEXT NOT NULL DEFAULT 'unpaid',
            rating INT NOT NULL DEFAULT 0,
            feedback TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL,
            version BIGINT NOT NULL DEFAULT 1
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_owner ON orders(owner_identity, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_awaiting ON orders(payment_external_id) WHERE payment_status = 'unpaid'`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

const orderColumns = `id, owner_identity, vehicle, options, comments,
        original_name, original_url, original_size,
        result_name, result_url, result_size,
        status, payment_provider, payment_external_id, payment_status,
        rating, feedback, created_at, updated_at, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	var rawStatus, rawPaymentStatus string
	err := row.Scan(
		&o.ID, &o.Owner, &o.Vehicle, &o.Options, &o.Comments,
		&o.OriginalFile.Name, &o.OriginalFile.URL, &o.OriginalFile.Size,
		&o.ResultFile.Name, &o.ResultFile.URL, &o.ResultFile.Size,
		&rawStatus, &o.Payment.Provider, &o.Payment.ExternalID, &rawPaymentStatus,
		&o.Rating, &o.Feedback, &o.CreatedAt, &o.UpdatedAt, &o.Version,
	)
	if err != nil {
		return nil, err
	}
	o.Status = model.NormalizeStatus(rawStatus)
	o.Payment.Status = model.PaymentStatus(rawPaymentStatus)
	return &o, nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}
	if order.Version == 0 {
		order.Version = 1
	}
	if order.Payment.Status == "" {
		order.Payment.Status = model.PaymentStatusUnpaid
	}

	const query = `INSERT INTO orders (
            id, owner_identity, vehicle, options, comments,
            original_name, original_url, original_size,
            result_name, result_url, result_size,
            status, payment_provider, payment_external_id, payment_status,
            rating, feedback, created_at, updated_at, version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`

	_, err := r.storage.pool.Exec(ctx, query,
		order.ID, order.Owner, order.Vehicle, order.Options, order.Comments,
		order.OriginalFile.Name, order.OriginalFile.URL, order.OriginalFile.Size,
		order.ResultFile.Name, order.ResultFile.URL, order.ResultFile.Size,
		string(order.Status), order.Payment.Provider, order.Payment.ExternalID, string(order.Payment.Status),
		order.Rating, order.Feedback, order.CreatedAt, order.UpdatedAt, order.Version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	switch {
	case filter.Owner != "":
		query += ` WHERE owner_identity=$1`
		args = append(args, filter.Owner)
	case filter.AwaitingPayment:
		query += ` WHERE payment_status='unpaid' AND payment_external_id <> '' AND status='uploaded'`
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
	}

	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update loads the current snapshot, applies the mutator, and persists the
// result guarded by a compare-and-swap on the version column. A concurrent
// writer that commits in between makes the swap miss: zero rows affected
// maps to ErrConflict and the caller may retry.
func (r *orderRepository) Update(ctx context.Context, id string, mutate func(*model.Order) error) (*model.Order, error) {
	var updated *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
		order, err := scanOrder(tx.QueryRow(ctx, query, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}

		prevVersion := order.Version
		if err := mutate(order); err != nil {
			return err
		}
		order.Touch(time.Now())
		order.Version = prevVersion + 1

		const update = `UPDATE orders SET
                owner_identity=$1, vehicle=$2, options=$3, comments=$4,
                original_name=$5, original_url=$6, original_size=$7,
                result_name=$8, result_url=$9, result_size=$10,
                status=$11, payment_provider=$12, payment_external_id=$13, payment_status=$14,
                rating=$15, feedback=$16, updated_at=$17, version=$18
            WHERE id=$19 AND version=$20`
		tag, err := tx.Exec(ctx, update,
			order.Owner, order.Vehicle, order.Options, order.Comments,
			order.OriginalFile.Name, order.OriginalFile.URL, order.OriginalFile.Size,
			order.ResultFile.Name, order.ResultFile.URL, order.ResultFile.Size,
			string(order.Status), order.Payment.Provider, order.Payment.ExternalID, string(order.Payment.Status),
			order.Rating, order.Feedback, order.UpdatedAt, order.Version,
			order.ID, prevVersion,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrConflict
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) (*model.Order, error) {
	query := `DELETE FROM orders WHERE id=$1 RETURNING ` + orderColumns
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
