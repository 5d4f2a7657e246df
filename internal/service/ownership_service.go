package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ymori/futalog/internal/domain"
)

// lidRepository is the subset of store.LidStore that OwnershipService requires.
type lidRepository interface {
	List(ctx context.Context) ([]*domain.Lid, error)
	GetByID(ctx context.Context, id int64) (*domain.Lid, error)
}

// ownershipRepository is the subset of store.OwnershipStore that
// OwnershipService requires. It is the only write path to ownership rows.
type ownershipRepository interface {
	Get(ctx context.Context, accountID string, lidID int64) (*domain.Ownership, error)
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Ownership, error)
	ListAll(ctx context.Context) ([]*domain.Ownership, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Ownership, error)
	Upsert(ctx context.Context, rec *domain.Ownership) error
	Delete(ctx context.Context, accountID string, lidID int64) error
}

// accountLookup is the subset of store.AccountStore used for read-side joins.
type accountLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
}

// draftRepository is the subset of store.DraftStore that OwnershipService
// requires.
type draftRepository interface {
	Replace(ctx context.Context, accountID string, selections []domain.Selection) error
	ListByAccount(ctx context.Context, accountID string) ([]domain.Selection, error)
	Clear(ctx context.Context, accountID string) error
}

// RecentFeedLimit is how many entries the home-page feed shows.
const RecentFeedLimit = 10

type OwnershipService struct {
	lids      lidRepository
	ownership ownershipRepository
	accounts  accountLookup
	drafts    draftRepository
	logger    *slog.Logger
	now       func() time.Time
}

func NewOwnershipService(
	lids lidRepository,
	ownership ownershipRepository,
	accounts accountLookup,
	drafts draftRepository,
	logger *slog.Logger,
) *OwnershipService {
	return &OwnershipService{
		lids:      lids,
		ownership: ownership,
		accounts:  accounts,
		drafts:    drafts,
		logger:    logger,
		now:       time.Now,
	}
}

// ListSummaries returns the whole catalog annotated with the viewer's own
// counts and the across-all-accounts totals. An empty viewerID means an
// anonymous viewer and yields zero self counts.
func (s *OwnershipService) ListSummaries(ctx context.Context, viewerID string) ([]domain.LidSummary, error) {
	lids, err := s.lids.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	records, err := s.ownership.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	return annotate(lids, records, viewerID), nil
}

// annotate merges ownership counts onto lids in one pass over the records.
func annotate(lids []*domain.Lid, records []*domain.Ownership, viewerID string) []domain.LidSummary {
	selfCounts := make(map[int64]int64)
	anyCounts := make(map[int64]int64)
	for _, rec := range records {
		anyCounts[rec.LidID] += rec.Count
		if viewerID != "" && rec.AccountID == viewerID {
			selfCounts[rec.LidID] += rec.Count
		}
	}

	summaries := make([]domain.LidSummary, 0, len(lids))
	for _, lid := range lids {
		summaries = append(summaries, domain.LidSummary{
			Lid:            *lid,
			SelfOwnedCount: selfCounts[lid.ID],
			AnyOwnedCount:  anyCounts[lid.ID],
		})
	}
	return summaries
}

// RecentAcquisitions returns the latest-updated ownership rows joined to
// their lid and collector. Rows whose lid or collector no longer resolves
// are skipped rather than failing the feed.
func (s *OwnershipService) RecentAcquisitions(ctx context.Context, limit int) ([]domain.RecentEntry, error) {
	records, err := s.ownership.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	entries := make([]domain.RecentEntry, 0, len(records))
	for _, rec := range records {
		lid, err := s.lids.GetByID(ctx, rec.LidID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
		}
		if lid == nil {
			s.logger.Warn("recent feed skipping unresolved lid", "lid_id", rec.LidID)
			continue
		}
		acct, err := s.accounts.GetByID(ctx, rec.AccountID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
		}
		if acct == nil {
			s.logger.Warn("recent feed skipping unresolved account", "account_id", rec.AccountID)
			continue
		}
		entries = append(entries, domain.RecentEntry{
			LidID:       lid.ID,
			CityName:    lid.CityName,
			DisplayName: lid.DisplayName,
			ImageURL:    lid.ImageURL,
			Nickname:    acct.Nickname,
			UpdatedAt:   rec.UpdatedAt,
		})
	}
	return entries, nil
}

// SetOwnership applies one count change for (accountID, lidID). It returns
// the resulting row, or nil when the change removed the row or was a no-op
// on an absent row. All ownership writes funnel through here.
func (s *OwnershipService) SetOwnership(ctx context.Context, accountID string, lidID, count int64) (*domain.Ownership, error) {
	if accountID == "" {
		return nil, domain.ErrUnauthorized
	}
	if lidID <= 0 {
		return nil, fmt.Errorf("%w: lid id %d", domain.ErrInvalidInput, lidID)
	}

	prev, err := s.ownership.Get(ctx, accountID, lidID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
	}

	next := transition(prev, accountID, lidID, count, s.now())

	switch {
	case next == nil && prev == nil:
		return nil, nil
	case next == nil:
		if err := s.ownership.Delete(ctx, accountID, lidID); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
		}
		s.logger.Info("ownership deleted", "account_id", accountID, "lid_id", lidID)
		return nil, nil
	default:
		if err := s.ownership.Upsert(ctx, next); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
		}
		s.logger.Info("ownership set", "account_id", accountID, "lid_id", lidID, "count", next.Count)
		return next, nil
	}
}

// transition is the ownership state machine: from the previous row (nil for
// absent) and a requested count to the next row (nil for absent). FirstGetAt
// advances only when the count rises above the previous value.
func transition(prev *domain.Ownership, accountID string, lidID, count int64, now time.Time) *domain.Ownership {
	if count <= 0 {
		return nil
	}

	next := &domain.Ownership{
		AccountID: accountID,
		LidID:     lidID,
		Count:     count,
		UpdatedAt: now,
	}
	if prev == nil || count > prev.Count {
		next.FirstGetAt = now
	} else {
		next.FirstGetAt = prev.FirstGetAt
	}
	return next
}

// StageDraft replaces the account's staged bulk batch.
func (s *OwnershipService) StageDraft(ctx context.Context, accountID string, selections []domain.Selection) error {
	if accountID == "" {
		return domain.ErrUnauthorized
	}
	for _, sel := range selections {
		if sel.LidID <= 0 {
			return fmt.Errorf("%w: lid id %d", domain.ErrInvalidInput, sel.LidID)
		}
	}
	if err := s.drafts.Replace(ctx, accountID, selections); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
	}
	return nil
}

// LoadDraft returns the account's staged batch.
func (s *OwnershipService) LoadDraft(ctx context.Context, accountID string) ([]domain.Selection, error) {
	if accountID == "" {
		return nil, domain.ErrUnauthorized
	}
	selections, err := s.drafts.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	return selections, nil
}

// ClearDraft discards the account's staged batch.
func (s *OwnershipService) ClearDraft(ctx context.Context, accountID string) error {
	if accountID == "" {
		return domain.ErrUnauthorized
	}
	if err := s.drafts.Clear(ctx, accountID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
	}
	return nil
}

// ApplyBatch applies selections strictly in order through the same state
// machine as single updates. The batch is not atomic: the first invalid
// entry or failed write aborts the remainder and earlier entries stay
// committed. It returns how many entries were applied.
func (s *OwnershipService) ApplyBatch(ctx context.Context, accountID string, selections []domain.Selection) (int, error) {
	if accountID == "" {
		return 0, domain.ErrUnauthorized
	}

	applied := 0
	for _, sel := range selections {
		if sel.LidID <= 0 {
			return applied, fmt.Errorf("%w: lid id %d", domain.ErrInvalidInput, sel.LidID)
		}
		if _, err := s.SetOwnership(ctx, accountID, sel.LidID, sel.Count); err != nil {
			return applied, err
		}
		applied++
	}

	s.logger.Info("bulk batch applied", "account_id", accountID, "entries", applied)
	return applied, nil
}

// CollectorSummary is one row of the collectors list: an account with its
// total owned count.
type CollectorSummary struct {
	*domain.Account
	TotalOwned int64
}

// ListCollectors returns every account with its summed owned count,
// ordered by nickname.
func (s *OwnershipService) ListCollectors(ctx context.Context) ([]CollectorSummary, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	records, err := s.ownership.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	totals := make(map[string]int64)
	for _, rec := range records {
		totals[rec.AccountID] += rec.Count
	}

	collectors := make([]CollectorSummary, 0, len(accounts))
	for _, acct := range accounts {
		collectors = append(collectors, CollectorSummary{Account: acct, TotalOwned: totals[acct.ID]})
	}
	return collectors, nil
}

// CollectorLids returns the lids an account owns, annotated with that
// account's counts.
func (s *OwnershipService) CollectorLids(ctx context.Context, accountID string) ([]domain.LidSummary, error) {
	records, err := s.ownership.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	owned := make([]domain.LidSummary, 0, len(records))
	for _, rec := range records {
		lid, err := s.lids.GetByID(ctx, rec.LidID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
		}
		if lid == nil {
			continue
		}
		owned = append(owned, domain.LidSummary{
			Lid:            *lid,
			SelfOwnedCount: rec.Count,
			AnyOwnedCount:  rec.Count,
		})
	}
	return owned, nil
}

// LidDetail bundles one lid with its owners for the detail page.
type LidDetail struct {
	Lid            *domain.Lid
	Owners         []OwnerEntry
	SelfOwnedCount int64
}

// OwnerEntry is one owner on a lid detail page.
type OwnerEntry struct {
	Nickname string
	Count    int64
}

// GetLidDetail returns the lid, its owners, and the viewer's own count.
func (s *OwnershipService) GetLidDetail(ctx context.Context, lidID int64, viewerID string) (*LidDetail, error) {
	if lidID <= 0 {
		return nil, fmt.Errorf("%w: lid id %d", domain.ErrInvalidInput, lidID)
	}

	lid, err := s.lids.GetByID(ctx, lidID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	if lid == nil {
		return nil, domain.ErrNotFound
	}

	records, err := s.ownership.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	detail := &LidDetail{Lid: lid}
	for _, rec := range records {
		if rec.LidID != lidID {
			continue
		}
		acct, err := s.accounts.GetByID(ctx, rec.AccountID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
		}
		if acct == nil {
			continue
		}
		detail.Owners = append(detail.Owners, OwnerEntry{Nickname: acct.Nickname, Count: rec.Count})
		if viewerID != "" && rec.AccountID == viewerID {
			detail.SelfOwnedCount = rec.Count
		}
	}
	return detail, nil
}
