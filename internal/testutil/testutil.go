// Package testutil builds in-memory stores for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/infrastructure/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated and seeded in-memory SQLite database. The pool is
// pinned to one connection because every connection to :memory: is a new database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.Seed(context.Background(), db))
	return db
}

// NewRedis starts a miniredis server and returns a client for it.
func NewRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return rdb, mr
}

// Role returns the seeded role with the given canonical name.
func Role(t *testing.T, db *gorm.DB, name string) domain.Role {
	t.Helper()
	var r domain.Role
	require.NoError(t, db.Where("name = ?", name).First(&r).Error)
	return r
}

// Client inserts an active client. referenceID may be nil.
func Client(t *testing.T, db *gorm.DB, code, name string, referenceID *uuid.UUID) domain.Client {
	t.Helper()
	c := domain.Client{Code: code, Name: name, ReferenceID: referenceID, IsActive: true}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// User inserts a user for the role name, optionally linked to a client.
func User(t *testing.T, db *gorm.DB, userName, roleName string, clientID *uuid.UUID) domain.User {
	t.Helper()
	role := Role(t, db, roleName)
	u := domain.User{UserName: userName, PasswordHash: "x", RoleID: role.RoleID, ClientID: clientID, IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// Tx inserts a ledger entry.
func Tx(t *testing.T, db *gorm.DB, clientID uuid.UUID, indicator int, amount int64, on time.Time) domain.Transaction {
	t.Helper()
	tx := domain.Transaction{
		ClientID:        clientID,
		IndicatorID:     indicator,
		Amount:          decimal.NewFromInt(amount),
		TransactionDate: on,
	}
	require.NoError(t, db.Create(&tx).Error)
	return tx
}
