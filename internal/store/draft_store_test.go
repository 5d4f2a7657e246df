package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymori/futalog/internal/domain"
)

func TestDraftStoreReplaceAndList(t *testing.T) {
	d := openTestDB(t)
	drafts := NewDraftStore(d)
	ctx := context.Background()
	acct := seedAccount(t, d, "seiya")
	seedLid(t, d, 1)
	seedLid(t, d, 2)
	seedLid(t, d, 3)

	require.NoError(t, drafts.Replace(ctx, acct, []domain.Selection{
		{LidID: 2, Count: 1},
		{LidID: 1, Count: 4},
	}))

	staged, err := drafts.ListByAccount(ctx, acct)
	require.NoError(t, err)
	require.Len(t, staged, 2)
	assert.Equal(t, int64(1), staged[0].LidID, "listed in lid id order")

	// Replace drops the old draft entirely.
	require.NoError(t, drafts.Replace(ctx, acct, []domain.Selection{{LidID: 3, Count: 0}}))
	staged, err = drafts.ListByAccount(ctx, acct)
	require.NoError(t, err)
	require.Len(t, staged, 1)
	assert.Equal(t, int64(3), staged[0].LidID)
	assert.Zero(t, staged[0].Count)
}

func TestDraftStoreClear(t *testing.T) {
	d := openTestDB(t)
	drafts := NewDraftStore(d)
	ctx := context.Background()
	acct := seedAccount(t, d, "seiya")
	seedLid(t, d, 1)

	require.NoError(t, drafts.Replace(ctx, acct, []domain.Selection{{LidID: 1, Count: 2}}))
	require.NoError(t, drafts.Clear(ctx, acct))

	staged, err := drafts.ListByAccount(ctx, acct)
	require.NoError(t, err)
	assert.Empty(t, staged)

	// Clearing an empty draft is fine.
	require.NoError(t, drafts.Clear(ctx, acct))
}
