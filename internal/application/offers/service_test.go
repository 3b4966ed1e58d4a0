package offers

import (
	"context"
	"testing"
	"time"

	"wealthdesk-backend/internal/application/auth"
	"wealthdesk-backend/internal/pkg/apperrors"
	"wealthdesk-backend/internal/pkg/constants"
	"wealthdesk-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestOffers_Lifecycle(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := &Service{DB: testutil.NewDB(t), Now: func() time.Time { return now }}
	ctx := context.Background()
	admin := &auth.Session{UserID: uuid.New(), Role: constants.RoleAdmin}
	client := &auth.Session{UserID: uuid.New(), Role: constants.RoleClient}

	live, err := svc.Create(ctx, admin.Actor(), Input{Title: str("Festive FD"), ValidTo: str("2024-12-31")})
	require.NoError(t, err)
	assert.Equal(t, now, live.ValidFrom)

	future, err := svc.Create(ctx, admin.Actor(), Input{Title: str("New year"), ValidFrom: str("2025-01-01")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin.Actor(), Input{Title: str("Expired"), ValidFrom: str("2024-01-01"), ValidTo: str("2024-02-01")})
	require.NoError(t, err)

	_, err = svc.Create(ctx, admin.Actor(), Input{Title: str(" ")})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	_, err = svc.Create(ctx, admin.Actor(), Input{Title: str("Backwards"), ValidFrom: str("2024-05-01"), ValidTo: str("2024-04-01")})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	got, err := svc.List(ctx, client, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, live.OfferID, got[0].OfferID)

	got, err = svc.List(ctx, client, true)
	require.NoError(t, err)
	assert.Len(t, got, 1, "only admins can list inactive offers")

	got, err = svc.List(ctx, admin, true)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = svc.Get(ctx, client, future.OfferID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	_, err = svc.Get(ctx, admin, future.OfferID)
	require.NoError(t, err)

	paused, err := svc.Update(ctx, admin.Actor(), live.OfferID, Input{IsActive: new(bool), ImageURL: str("https://cdn.example.com/a.png")})
	require.NoError(t, err)
	assert.False(t, paused.IsActive)
	assert.Equal(t, "https://cdn.example.com/a.png", *paused.ImageURL)

	got, err = svc.List(ctx, client, false)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, svc.Delete(ctx, live.OfferID))
	assert.True(t, apperrors.IsKind(svc.Delete(ctx, live.OfferID), apperrors.KindNotFound))
}
