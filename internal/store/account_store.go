package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ymori/futalog/internal/domain"
)

type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

const accountColumns = "id, email, password_hash, nickname, comment, friend_code, created_at, updated_at"

func (s *AccountStore) Create(ctx context.Context, acct *domain.Account) (*domain.Account, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, password_hash, nickname) VALUES (?, ?, ?, ?)
	`, acct.ID, acct.Email, acct.PasswordHash, acct.Nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return s.GetByID(ctx, acct.ID)
}

func (s *AccountStore) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return s.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
}

func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
}

func (s *AccountStore) get(ctx context.Context, query string, args ...any) (*domain.Account, error) {
	acct := &domain.Account{}
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&acct.ID, &acct.Email, &acct.PasswordHash,
		&acct.Nickname, &acct.Comment, &acct.FriendCode, &acct.CreatedAt, &acct.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acct, nil
}

func (s *AccountStore) List(ctx context.Context) ([]*domain.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+accountColumns+` FROM accounts ORDER BY nickname ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var accounts []*domain.Account
	for rows.Next() {
		acct := &domain.Account{}
		if err := rows.Scan(&acct.ID, &acct.Email, &acct.PasswordHash, &acct.Nickname,
			&acct.Comment, &acct.FriendCode, &acct.CreatedAt, &acct.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// UpdateProfile replaces the mutable profile fields of one account.
func (s *AccountStore) UpdateProfile(ctx context.Context, id, nickname, comment string, friendCode *string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET nickname = ?, comment = ?, friend_code = ?, updated_at = datetime('now')
		WHERE id = ?
	`, nickname, comment, friendCode, id)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("account not found")
	}

	return nil
}
