package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymori/futalog/internal/db"
	"github.com/ymori/futalog/internal/domain"
	"github.com/ymori/futalog/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	ownership *OwnershipService
	accounts  *AccountService
	lids      *store.LidStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	logger := discardLogger()
	lids := store.NewLidStore(d)
	f := &fixture{
		ownership: NewOwnershipService(lids, store.NewOwnershipStore(d), store.NewAccountStore(d), store.NewDraftStore(d), logger),
		accounts:  NewAccountService(store.NewAccountStore(d), store.NewSessionStore(d), time.Hour, logger),
		lids:      lids,
	}
	return f
}

func (f *fixture) addAccount(t *testing.T, nickname string) *domain.Account {
	t.Helper()
	acct, _, err := f.accounts.Register(context.Background(), nickname+"@example.com", "password123", nickname)
	require.NoError(t, err)
	return acct
}

func (f *fixture) addLid(t *testing.T, id, regionID int64, designs ...string) *domain.Lid {
	t.Helper()
	lid, err := f.lids.Create(context.Background(), &domain.Lid{
		ID:             id,
		RegionID:       regionID,
		CityName:       "某市",
		DifficultyCode: "C",
	}, designs)
	require.NoError(t, err)
	return lid
}

func TestSetOwnershipCreatesRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.addAccount(t, "seiya")
	f.addLid(t, 1, 1)

	rec, err := f.ownership.SetOwnership(ctx, acct.ID, 1, 3)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(3), rec.Count)
	assert.False(t, rec.FirstGetAt.IsZero())
}

func TestSetOwnershipMonotonicTimestamp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.addAccount(t, "seiya")
	f.addLid(t, 1, 1)

	base := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	f.ownership.now = func() time.Time { return clock }

	_, err := f.ownership.SetOwnership(ctx, acct.ID, 1, 2)
	require.NoError(t, err)

	clock = base.Add(time.Hour)
	second, err := f.ownership.SetOwnership(ctx, acct.ID, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, base.Add(time.Hour), second.FirstGetAt, "raising the count advances the timestamp")

	clock = base.Add(2 * time.Hour)
	third, err := f.ownership.SetOwnership(ctx, acct.ID, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), third.Count)
	assert.Equal(t, base.Add(time.Hour), third.FirstGetAt.UTC(), "lowering the count keeps the second call's timestamp")
	assert.NotEqual(t, base, third.FirstGetAt.UTC())
}

func TestSetOwnershipDeleteOnZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.addAccount(t, "seiya")
	f.addLid(t, 1, 1)

	_, err := f.ownership.SetOwnership(ctx, acct.ID, 1, 2)
	require.NoError(t, err)

	rec, err := f.ownership.SetOwnership(ctx, acct.ID, 1, 0)
	require.NoError(t, err)
	assert.Nil(t, rec)

	detail, err := f.ownership.GetLidDetail(ctx, 1, acct.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Owners)
	assert.Zero(t, detail.SelfOwnedCount)
}

func TestSetOwnershipAbsentToAbsentIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.addAccount(t, "seiya")
	f.addLid(t, 1, 1)

	rec, err := f.ownership.SetOwnership(ctx, acct.ID, 1, -4)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSetOwnershipUnauthorized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addLid(t, 1, 1)

	_, err := f.ownership.SetOwnership(ctx, "", 1, 1)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	summaries, err := f.ownership.ListSummaries(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, summaries[0].AnyOwnedCount, "rejected write must not mutate the store")
}

func TestSetOwnershipInvalidLidID(t *testing.T) {
	f := newFixture(t)
	acct := f.addAccount(t, "seiya")

	_, err := f.ownership.SetOwnership(context.Background(), acct.ID, 0, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransitionPure(t *testing.T) {
	now := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	prev := &domain.Ownership{AccountID: "a", LidID: 1, Count: 5, FirstGetAt: now.Add(-time.Hour)}

	next := transition(prev, "a", 1, 5, now)
	require.NotNil(t, next)
	assert.Equal(t, prev.FirstGetAt, next.FirstGetAt, "equal count keeps the timestamp")
	assert.Equal(t, now, next.UpdatedAt)

	assert.Nil(t, transition(prev, "a", 1, 0, now))
	assert.Nil(t, transition(nil, "a", 1, -1, now))

	created := transition(nil, "a", 1, 2, now)
	require.NotNil(t, created)
	assert.Equal(t, now, created.FirstGetAt)
}

func TestAnnotateAggregates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addAccount(t, "a")
	b := f.addAccount(t, "b")
	c := f.addAccount(t, "c")
	f.addLid(t, 1, 1)
	f.addLid(t, 2, 1)
	f.addLid(t, 3, 1)

	_, err := f.ownership.SetOwnership(ctx, a.ID, 1, 2)
	require.NoError(t, err)
	_, err = f.ownership.SetOwnership(ctx, b.ID, 1, 3)
	require.NoError(t, err)
	_, err = f.ownership.SetOwnership(ctx, c.ID, 2, 1)
	require.NoError(t, err)

	summaries, err := f.ownership.ListSummaries(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	byID := map[int64]domain.LidSummary{}
	for _, s := range summaries {
		byID[s.ID] = s
	}

	assert.Equal(t, int64(5), byID[1].AnyOwnedCount)
	assert.Equal(t, int64(2), byID[1].SelfOwnedCount)
	assert.Equal(t, int64(1), byID[2].AnyOwnedCount)
	assert.Zero(t, byID[2].SelfOwnedCount)
	assert.Zero(t, byID[3].AnyOwnedCount)
}

func TestAnnotateAnonymousViewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addAccount(t, "a")
	f.addLid(t, 1, 1)

	_, err := f.ownership.SetOwnership(ctx, a.ID, 1, 4)
	require.NoError(t, err)

	summaries, err := f.ownership.ListSummaries(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(4), summaries[0].AnyOwnedCount)
	assert.Zero(t, summaries[0].SelfOwnedCount)
}

func TestApplyBatchPartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.addAccount(t, "seiya")
	f.addLid(t, 1, 1)
	f.addLid(t, 2, 1)

	_, err := f.ownership.SetOwnership(ctx, acct.ID, 2, 7)
	require.NoError(t, err)

	applied, err := f.ownership.ApplyBatch(ctx, acct.ID, []domain.Selection{
		{LidID: 1, Count: 5},
		{LidID: 2, Count: -1},
		{LidID: 0, Count: 9}, // invalid: aborts here
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 2, applied)

	summaries, err := f.ownership.ListSummaries(ctx, acct.ID)
	require.NoError(t, err)
	byID := map[int64]domain.LidSummary{}
	for _, s := range summaries {
		byID[s.ID] = s
	}
	assert.Equal(t, int64(5), byID[1].SelfOwnedCount, "first entry committed")
	assert.Zero(t, byID[2].SelfOwnedCount, "second entry deleted the existing record")
}

func TestApplyBatchUnauthorized(t *testing.T) {
	f := newFixture(t)

	_, err := f.ownership.ApplyBatch(context.Background(), "", []domain.Selection{{LidID: 1, Count: 1}})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestDraftLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.addAccount(t, "seiya")
	f.addLid(t, 1, 1)
	f.addLid(t, 2, 1)

	require.NoError(t, f.ownership.StageDraft(ctx, acct.ID, []domain.Selection{
		{LidID: 1, Count: 2},
		{LidID: 2, Count: 0},
	}))

	draft, err := f.ownership.LoadDraft(ctx, acct.ID)
	require.NoError(t, err)
	assert.Len(t, draft, 2)

	// Restaging replaces, never merges.
	require.NoError(t, f.ownership.StageDraft(ctx, acct.ID, []domain.Selection{{LidID: 2, Count: 3}}))
	draft, err = f.ownership.LoadDraft(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, draft, 1)
	assert.Equal(t, int64(2), draft[0].LidID)

	require.NoError(t, f.ownership.ClearDraft(ctx, acct.ID))
	draft, err = f.ownership.LoadDraft(ctx, acct.ID)
	require.NoError(t, err)
	assert.Empty(t, draft)
}

func TestStageDraftRejectsInvalidLid(t *testing.T) {
	f := newFixture(t)
	acct := f.addAccount(t, "seiya")

	err := f.ownership.StageDraft(context.Background(), acct.ID, []domain.Selection{{LidID: -1, Count: 2}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecentAcquisitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addAccount(t, "seiya")
	b := f.addAccount(t, "satoshi")
	f.addLid(t, 1, 1, "ゼニガメ")
	f.addLid(t, 2, 2, "ピカチュウ", "イーブイ")

	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	clock := base
	f.ownership.now = func() time.Time { return clock }

	_, err := f.ownership.SetOwnership(ctx, a.ID, 1, 1)
	require.NoError(t, err)
	clock = base.Add(time.Minute)
	_, err = f.ownership.SetOwnership(ctx, b.ID, 2, 2)
	require.NoError(t, err)

	entries, err := f.ownership.RecentAcquisitions(ctx, RecentFeedLimit)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, int64(2), entries[0].LidID, "latest update first")
	assert.Equal(t, "satoshi", entries[0].Nickname)
	assert.Equal(t, "ピカチュウ / イーブイ", entries[0].DisplayName)
	assert.Equal(t, "seiya", entries[1].Nickname)
}

func TestRecentAcquisitionsLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.addAccount(t, "seiya")
	for i := int64(1); i <= 12; i++ {
		f.addLid(t, i, 1)
		_, err := f.ownership.SetOwnership(ctx, acct.ID, i, 1)
		require.NoError(t, err)
	}

	entries, err := f.ownership.RecentAcquisitions(ctx, RecentFeedLimit)
	require.NoError(t, err)
	assert.Len(t, entries, RecentFeedLimit)
}

func TestListCollectors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addAccount(t, "alice")
	b := f.addAccount(t, "bob")
	f.addLid(t, 1, 1)
	f.addLid(t, 2, 1)

	_, err := f.ownership.SetOwnership(ctx, a.ID, 1, 2)
	require.NoError(t, err)
	_, err = f.ownership.SetOwnership(ctx, a.ID, 2, 1)
	require.NoError(t, err)

	collectors, err := f.ownership.ListCollectors(ctx)
	require.NoError(t, err)
	require.Len(t, collectors, 2)

	totals := map[string]int64{}
	for _, c := range collectors {
		totals[c.Nickname] = c.TotalOwned
	}
	assert.Equal(t, int64(3), totals["alice"])
	assert.Zero(t, totals["bob"])
	_ = b
}

func TestGetLidDetailNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.ownership.GetLidDetail(context.Background(), 42, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
