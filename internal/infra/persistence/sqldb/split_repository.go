// Package sqldb stores split history through database/sql. It serves both
// MySQL and SQLite; the two share placeholder syntax and differ only in DDL.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	domsplit "example.com/divide-account/internal/domain/split"
)

type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite"
)

type SplitRepository struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the database and creates the schema if needed.
func Open(ctx context.Context, dialect Dialect, dsn string) (*SplitRepository, error) {
	if _, ok := schemas[dialect]; !ok {
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// A single connection keeps SQLite writers from tripping over each other.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	repo := NewSplitRepository(db, dialect)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func NewSplitRepository(db *sql.DB, dialect Dialect) *SplitRepository {
	return &SplitRepository{db: db, dialect: dialect}
}

func (r *SplitRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemas[r.dialect] {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (r *SplitRepository) Create(ctx context.Context, s *domsplit.Split) (_ *domsplit.Split, retErr error) {
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

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	alloc := rec.Allocation
	_, err = tx.ExecContext(ctx, `
        INSERT INTO splits (id, total, base_share, remainder, recipient_count, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `, rec.ID, alloc.Total, alloc.BaseShare, alloc.Remainder, len(alloc.Shares), rec.CreatedAt.UnixMicro())
	if err != nil {
		return nil, err
	}

	for i, share := range alloc.Shares {
		_, err = tx.ExecContext(ctx, `
            INSERT INTO split_shares (split_id, seq, email, amount)
            VALUES (?, ?, ?, ?)
        `, rec.ID, i, share.Email, share.Amount)
		if err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *SplitRepository) GetByID(ctx context.Context, id string) (*domsplit.Split, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, total, base_share, remainder, created_at
        FROM splits WHERE id = ?
    `, id)

	var s domsplit.Split
	var createdAt int64
	if err := row.Scan(&s.ID, &s.Allocation.Total, &s.Allocation.BaseShare, &s.Allocation.Remainder, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domsplit.ErrSplitNotFound
		}
		return nil, err
	}
	s.CreatedAt = time.UnixMicro(createdAt).UTC()

	shares, err := r.listShares(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Allocation.Shares = shares
	return &s, nil
}

func (r *SplitRepository) listShares(ctx context.Context, splitID string) ([]domsplit.Share, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT email, amount
        FROM split_shares
        WHERE split_id = ?
        ORDER BY seq
    `, splitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []domsplit.Share
	for rows.Next() {
		var share domsplit.Share
		if err := rows.Scan(&share.Email, &share.Amount); err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}
	return shares, rows.Err()
}

func (r *SplitRepository) List(ctx context.Context, limit int) ([]*domsplit.Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, total, recipient_count, created_at
        FROM splits
        ORDER BY created_at DESC, id DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]*domsplit.Summary, 0)
	for rows.Next() {
		var sum domsplit.Summary
		var createdAt int64
		if err := rows.Scan(&sum.ID, &sum.Total, &sum.RecipientCount, &createdAt); err != nil {
			return nil, err
		}
		sum.CreatedAt = time.UnixMicro(createdAt).UTC()
		summaries = append(summaries, &sum)
	}
	return summaries, rows.Err()
}

func (r *SplitRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SplitRepository) Close() error {
	return r.db.Close()
}
