// Package master manages the reference tables: roles, users, branches and clients.
package master

import (
	"strings"
	"time"

	"wealthdesk-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// parseID reads an optional uuid field; "" means "clear".
func parseID(field, raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperrors.Validation("Invalid "+field, apperrors.FieldError{Field: field, Message: "Must be a UUID"})
	}
	return &id, nil
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

// nullable turns "" into nil so optional columns are cleared rather than blanked.
func nullable(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}

func exists(tx *gorm.DB, model interface{}, column string, value interface{}, entity string) (bool, error) {
	var n int64
	if err := tx.Model(model).Where(column+" = ?", value).Count(&n).Error; err != nil {
		return false, apperrors.Store(err, entity)
	}
	return n > 0, nil
}
