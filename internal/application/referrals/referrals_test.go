package referrals

import (
	"context"
	"testing"

	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	a := testutil.Client(t, db, "A", "A", nil)
	b := testutil.Client(t, db, "B", "B", &a.ClientID)
	c := testutil.Client(t, db, "C", "C", &b.ClientID)

	assert.NoError(t, Check(ctx, db, c.ClientID, nil))
	assert.NoError(t, Check(ctx, db, uuid.New(), &c.ClientID))
	assert.ErrorIs(t, Check(ctx, db, a.ClientID, &a.ClientID), ErrSelfReference)

	missing := uuid.New()
	assert.ErrorIs(t, Check(ctx, db, a.ClientID, &missing), ErrUnknownReference)

	// a -> c would close a -> c -> b -> a.
	assert.ErrorIs(t, Check(ctx, db, a.ClientID, &c.ClientID), ErrCycle)

	// Moving c under a is fine.
	assert.NoError(t, Check(ctx, db, c.ClientID, &a.ClientID))

	require.NoError(t, db.Model(&domain.Client{}).Where("client_id = ?", a.ClientID).
		Update("reference_id", missing).Error)
	assert.NoError(t, Check(ctx, db, uuid.New(), &b.ClientID))
}
