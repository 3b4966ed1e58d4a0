package database

import (
	"context"
	"testing"

	"wealthdesk-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAutoMigrateAndSeed_Idempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, AutoMigrate(db))

	ctx := context.Background()
	require.NoError(t, Seed(ctx, db))
	require.NoError(t, Seed(ctx, db))

	var indicators []domain.Indicator
	require.NoError(t, db.Order("indicator_id").Find(&indicators).Error)
	require.Len(t, indicators, 4)
	assert.Equal(t, "Investment", indicators[0].Name)
	assert.Equal(t, "Closure", indicators[3].Name)

	var roles []domain.Role
	require.NoError(t, db.Find(&roles).Error)
	assert.Len(t, roles, 3)
	for _, r := range roles {
		assert.NotEmpty(t, r.Modules())
	}
}

func TestPinger(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	assert.NoError(t, (&Pinger{DB: db}).Ping(context.Background()))

	var nilPinger *Pinger
	assert.NoError(t, nilPinger.Ping(context.Background()))
}
