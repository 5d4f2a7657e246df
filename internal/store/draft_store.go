package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ymori/futalog/internal/domain"
)

// DraftStore holds each account's staged bulk batch server-side between the
// selection and confirmation screens.
type DraftStore struct {
	db *sql.DB
}

func NewDraftStore(db *sql.DB) *DraftStore {
	return &DraftStore{db: db}
}

// Replace discards the account's current draft and stores selections as the
// new one.
func (s *DraftStore) Replace(ctx context.Context, accountID string, selections []domain.Selection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin draft transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("failed to roll back draft transaction", "error", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bulk_drafts WHERE account_id = ?`, accountID); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}

	for _, sel := range selections {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bulk_drafts (account_id, lid_id, count) VALUES (?, ?, ?)
		`, accountID, sel.LidID, sel.Count); err != nil {
			return fmt.Errorf("failed to stage draft entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit draft: %w", err)
	}
	return nil
}

func (s *DraftStore) ListByAccount(ctx context.Context, accountID string) ([]domain.Selection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT lid_id, count FROM bulk_drafts WHERE account_id = ? ORDER BY lid_id ASC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var selections []domain.Selection
	for rows.Next() {
		var sel domain.Selection
		if err := rows.Scan(&sel.LidID, &sel.Count); err != nil {
			return nil, fmt.Errorf("failed to scan draft entry: %w", err)
		}
		selections = append(selections, sel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draft: %w", err)
	}

	return selections, nil
}

func (s *DraftStore) Clear(ctx context.Context, accountID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM bulk_drafts WHERE account_id = ?`, accountID)
	if err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}
