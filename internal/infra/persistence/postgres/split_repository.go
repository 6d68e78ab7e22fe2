// Package postgres stores split history in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domsplit "example.com/divide-account/internal/domain/split"
)

const schema = `
CREATE TABLE IF NOT EXISTS splits (
    id UUID PRIMARY KEY,
    total BIGINT NOT NULL,
    base_share BIGINT NOT NULL,
    remainder BIGINT NOT NULL,
    recipient_count INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_splits_created_at ON splits (created_at);

CREATE TABLE IF NOT EXISTS split_shares (
    split_id UUID NOT NULL REFERENCES splits(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    email TEXT NOT NULL,
    amount BIGINT NOT NULL,
    PRIMARY KEY (split_id, seq)
);
`

type SplitRepository struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres and creates the schema if needed.
func Open(ctx context.Context, dsn string) (*SplitRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SplitRepository{pool: pool}, nil
}

func (r *SplitRepository) Create(ctx context.Context, s *domsplit.Split) (*domsplit.Split, error) {
	if s == nil || len(s.Allocation.Shares) == 0 {
		return nil, domsplit.ErrInvalidSplit
	}

	rec := *s
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		alloc := rec.Allocation
		_, err := tx.Exec(ctx, `
            INSERT INTO splits (id, total, base_share, remainder, recipient_count, created_at)
            VALUES ($1, $2, $3, $4, $5, $6)
        `, rec.ID, alloc.Total, alloc.BaseShare, alloc.Remainder, len(alloc.Shares), rec.CreatedAt)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for i, share := range alloc.Shares {
			batch.Queue(`
                INSERT INTO split_shares (split_id, seq, email, amount)
                VALUES ($1, $2, $3, $4)
            `, rec.ID, i, share.Email, share.Amount)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return nil, fmt.Errorf("create split: %w", err)
	}
	return &rec, nil
}

func (r *SplitRepository) GetByID(ctx context.Context, id string) (*domsplit.Split, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domsplit.ErrSplitNotFound
	}

	var s domsplit.Split
	err := r.pool.QueryRow(ctx, `
        SELECT id::text, total, base_share, remainder, created_at
        FROM splits WHERE id = $1
    `, id).Scan(&s.ID, &s.Allocation.Total, &s.Allocation.BaseShare, &s.Allocation.Remainder, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domsplit.ErrSplitNotFound
		}
		return nil, err
	}
	s.CreatedAt = s.CreatedAt.UTC()

	rows, err := r.pool.Query(ctx, `
        SELECT email, amount
        FROM split_shares
        WHERE split_id = $1
        ORDER BY seq
    `, id)
	if err != nil {
		return nil, err
	}
	shares, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domsplit.Share, error) {
		var share domsplit.Share
		err := row.Scan(&share.Email, &share.Amount)
		return share, err
	})
	if err != nil {
		return nil, err
	}
	s.Allocation.Shares = shares
	return &s, nil
}

func (r *SplitRepository) List(ctx context.Context, limit int) ([]*domsplit.Summary, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id::text, total, recipient_count, created_at
        FROM splits
        ORDER BY created_at DESC, id DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domsplit.Summary, error) {
		var sum domsplit.Summary
		if err := row.Scan(&sum.ID, &sum.Total, &sum.RecipientCount, &sum.CreatedAt); err != nil {
			return nil, err
		}
		sum.CreatedAt = sum.CreatedAt.UTC()
		return &sum, nil
	})
}

func (r *SplitRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *SplitRepository) Close() error {
	r.pool.Close()
	return nil
}
