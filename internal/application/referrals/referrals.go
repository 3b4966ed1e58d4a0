// Package referrals validates the client reference_id tree.
package referrals

import (
	"context"
	"errors"

	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxDepth bounds the walk up the tree; real chains are a few levels deep.
const maxDepth = 1000

var (
	ErrSelfReference    = apperrors.Validation("Invalid reference", apperrors.FieldError{Field: "referenceId", Message: "A client cannot refer itself"})
	ErrUnknownReference = apperrors.Validation("Invalid reference", apperrors.FieldError{Field: "referenceId", Message: "Referring client not found"})
	ErrCycle            = apperrors.Validation("Invalid reference", apperrors.FieldError{Field: "referenceId", Message: "Reference would create a referral cycle"})
)

// Check reports whether clientID may point at refID. refID must be an existing
// client other than clientID, and clientID must not already appear above refID.
// A nil refID is always allowed.
func Check(ctx context.Context, db *gorm.DB, clientID uuid.UUID, refID *uuid.UUID) error {
	if refID == nil {
		return nil
	}
	if *refID == clientID {
		return ErrSelfReference
	}

	cur := *refID
	for depth := 0; depth < maxDepth; depth++ {
		var c domain.Client
		err := db.WithContext(ctx).Select("client_id", "reference_id").
			First(&c, "client_id = ?", cur).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if depth == 0 {
				return ErrUnknownReference
			}
			// A dangling link further up ends the chain.
			return nil
		}
		if err != nil {
			return apperrors.Store(err, "Client")
		}
		if c.ReferenceID == nil {
			return nil
		}
		if *c.ReferenceID == clientID {
			return ErrCycle
		}
		cur = *c.ReferenceID
	}
	return ErrCycle
}
