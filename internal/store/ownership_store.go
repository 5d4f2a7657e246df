package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ymori/futalog/internal/domain"
)

type OwnershipStore struct {
	db *sql.DB
}

func NewOwnershipStore(db *sql.DB) *OwnershipStore {
	return &OwnershipStore{db: db}
}

const ownershipColumns = "account_id, lid_id, count, updated_at, first_get_at"

func (s *OwnershipStore) Get(ctx context.Context, accountID string, lidID int64) (*domain.Ownership, error) {
	rec := &domain.Ownership{}
	err := s.db.QueryRowContext(ctx, `
		SELECT `+ownershipColumns+` FROM ownership WHERE account_id = ? AND lid_id = ?
	`, accountID, lidID).Scan(&rec.AccountID, &rec.LidID, &rec.Count, &rec.UpdatedAt, &rec.FirstGetAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ownership: %w", err)
	}

	return rec, nil
}

func (s *OwnershipStore) ListByAccount(ctx context.Context, accountID string) ([]*domain.Ownership, error) {
	return s.list(ctx, `
		SELECT `+ownershipColumns+` FROM ownership WHERE account_id = ? ORDER BY lid_id ASC
	`, accountID)
}

func (s *OwnershipStore) ListAll(ctx context.Context) ([]*domain.Ownership, error) {
	return s.list(ctx, `
		SELECT `+ownershipColumns+` FROM ownership ORDER BY account_id ASC, lid_id ASC
	`)
}

// ListRecent returns the latest-updated rows first, at most limit of them.
// Every stored row has count > 0, so no positivity filter is needed here.
func (s *OwnershipStore) ListRecent(ctx context.Context, limit int) ([]*domain.Ownership, error) {
	return s.list(ctx, `
		SELECT `+ownershipColumns+` FROM ownership ORDER BY updated_at DESC, lid_id ASC LIMIT ?
	`, limit)
}

func (s *OwnershipStore) list(ctx context.Context, query string, args ...any) ([]*domain.Ownership, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ownership: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var records []*domain.Ownership
	for rows.Next() {
		rec := &domain.Ownership{}
		if err := rows.Scan(&rec.AccountID, &rec.LidID, &rec.Count, &rec.UpdatedAt, &rec.FirstGetAt); err != nil {
			return nil, fmt.Errorf("failed to scan ownership: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ownership: %w", err)
	}

	return records, nil
}

func (s *OwnershipStore) Upsert(ctx context.Context, rec *domain.Ownership) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ownership (account_id, lid_id, count, updated_at, first_get_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (account_id, lid_id) DO UPDATE SET
			count = excluded.count,
			updated_at = excluded.updated_at,
			first_get_at = excluded.first_get_at
	`, rec.AccountID, rec.LidID, rec.Count, rec.UpdatedAt, rec.FirstGetAt)
	if err != nil {
		return fmt.Errorf("failed to upsert ownership: %w", err)
	}
	return nil
}

// Delete removes the row for (accountID, lidID). Deleting a row that does
// not exist is not an error.
func (s *OwnershipStore) Delete(ctx context.Context, accountID string, lidID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM ownership WHERE account_id = ? AND lid_id = ?
	`, accountID, lidID)
	if err != nil {
		return fmt.Errorf("failed to delete ownership: %w", err)
	}
	return nil
}
