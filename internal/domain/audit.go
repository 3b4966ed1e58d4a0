package domain

import (
	"time"

	"github.com/google/uuid"
)

// Audit is embedded in every mutable master and request record.
type Audit struct {
	CreatedByID      *uuid.UUID `gorm:"column:created_by_id;type:uuid" json:"createdById"`
	CreatedDate      time.Time  `gorm:"column:created_date;autoCreateTime" json:"createdDate"`
	LastModifiedByID *uuid.UUID `gorm:"column:last_modified_by_id;type:uuid" json:"lastModifiedById"`
	LastModifiedDate time.Time  `gorm:"column:last_modified_date;autoUpdateTime" json:"lastModifiedDate"`
}

// Stamp records the actor on create (both fields) or update (modifier only).
func (a *Audit) Stamp(actor *uuid.UUID, creating bool) {
	if creating {
		a.CreatedByID = actor
	}
	a.LastModifiedByID = actor
}
