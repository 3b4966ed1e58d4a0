package database

import (
	"context"

	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Open opens a GORM DB from a Postgres DSN.
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") behind connection poolers such as PgBouncer.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
}

// Models is every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&domain.Indicator{},
		&domain.Role{},
		&domain.Branch{},
		&domain.Client{},
		&domain.User{},
		&domain.Transaction{},
		&domain.InvestmentRequest{},
		&domain.WithdrawalRequest{},
		&domain.ReferralRequest{},
		&domain.Offer{},
		&domain.ImportBatch{},
	}
}

// AutoMigrate runs migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Seed inserts the fixed indicators and the canonical roles. Existing rows are left alone.
func Seed(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx)
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&domain.Indicators).Error; err != nil {
		return err
	}
	for _, name := range constants.ValidRoles {
		var existing domain.Role
		err := tx.Where("name = ?", name).Limit(1).Find(&existing).Error
		if err != nil {
			return err
		}
		if existing.RoleID != uuid.Nil {
			continue
		}
		role := domain.Role{Name: name, ModuleAccess: domain.ModulesJSON(constants.DefaultModuleAccess[name])}
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
	}
	return nil
}

// Pinger adapts *gorm.DB to the health check's DBPinger.
type Pinger struct {
	DB *gorm.DB
}

func (p *Pinger) Ping(ctx context.Context) error {
	if p == nil || p.DB == nil {
		return nil
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
