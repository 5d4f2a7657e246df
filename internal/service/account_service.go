package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ymori/futalog/internal/domain"
)

// accountRepository is the subset of store.AccountStore that AccountService
// requires.
type accountRepository interface {
	Create(ctx context.Context, acct *domain.Account) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, id, nickname, comment string, friendCode *string) error
}

// sessionRepository is the subset of store.SessionStore that AccountService
// requires.
type sessionRepository interface {
	Create(ctx context.Context, sess *domain.Session) error
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

const (
	maxCommentLength = 200
	friendCodeLength = 12
)

var friendCodePattern = regexp.MustCompile(`^[A-Z0-9]+$`)

type AccountService struct {
	accounts   accountRepository
	sessions   sessionRepository
	sessionTTL time.Duration
	logger     *slog.Logger
}

func NewAccountService(accounts accountRepository, sessions sessionRepository, sessionTTL time.Duration, logger *slog.Logger) *AccountService {
	return &AccountService{
		accounts:   accounts,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Register creates an account and an initial session.
func (s *AccountService) Register(ctx context.Context, email, password, nickname string) (*domain.Account, *domain.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	nickname = strings.TrimSpace(nickname)
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	if len(password) < 8 {
		return nil, nil, fmt.Errorf("%w: password too short", domain.ErrInvalidInput)
	}
	if nickname == "" {
		return nil, nil, fmt.Errorf("%w: nickname required", domain.ErrInvalidInput)
	}

	existing, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	if existing != nil {
		return nil, nil, fmt.Errorf("%w: email already registered", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
	}

	acct, err := s.accounts.Create(ctx, &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Nickname:     nickname,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
	}

	sess, err := s.createSession(ctx, acct.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("account registered", "account_id", acct.ID)
	return acct, sess, nil
}

// Login verifies credentials and opens a session.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	acct, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	if acct == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	sess, err := s.createSession(ctx, acct.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("login", "account_id", acct.ID)
	return sess, nil
}

func (s *AccountService) createSession(ctx context.Context, accountID string) (*domain.Session, error) {
	sess := &domain.Session{
		Token:     uuid.NewString(),
		AccountID: accountID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
	}
	return sess, nil
}

// Logout discards the session for token. Unknown tokens are ignored.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
	}
	return nil
}

// CurrentAccount resolves a session token to its account. A missing,
// expired, or dangling session resolves to nil, meaning anonymous.
func (s *AccountService) CurrentAccount(ctx context.Context, token string) (*domain.Account, error) {
	if token == "" {
		return nil, nil
	}
	sess, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	if sess == nil {
		return nil, nil
	}
	acct, err := s.accounts.GetByID(ctx, sess.AccountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	return acct, nil
}

// GetAccount returns one account by id, or nil when unknown.
func (s *AccountService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	acct, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	return acct, nil
}

// UpdateProfile validates and saves the mutable profile fields. The friend
// code is normalized by stripping whitespace and uppercasing; after
// normalization it must be exactly 12 alphanumerics, or empty to clear it.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID, nickname, comment, friendCode string) error {
	if accountID == "" {
		return domain.ErrUnauthorized
	}

	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return fmt.Errorf("%w: nickname required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return fmt.Errorf("%w: comment exceeds %d characters", domain.ErrInvalidInput, maxCommentLength)
	}

	normalized := strings.ToUpper(strings.Join(strings.Fields(friendCode), ""))
	var code *string
	if normalized != "" {
		if utf8.RuneCountInString(normalized) != friendCodeLength {
			return fmt.Errorf("%w: friend code must be %d characters", domain.ErrInvalidInput, friendCodeLength)
		}
		if !friendCodePattern.MatchString(normalized) {
			return fmt.Errorf("%w: friend code must be alphanumeric", domain.ErrInvalidInput)
		}
		code = &normalized
	}

	if err := s.accounts.UpdateProfile(ctx, accountID, nickname, comment, code); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
	}

	s.logger.Info("profile updated", "account_id", accountID)
	return nil
}
