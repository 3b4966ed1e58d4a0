// Package offers manages the promotional content shown on the dashboard.
package offers

import (
	"context"
	"strings"
	"time"

	"wealthdesk-backend/internal/application/auth"
	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/pkg/apperrors"
	"wealthdesk-backend/internal/pkg/constants"

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

type Input struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	ValidFrom   *string `json:"validFrom"`
	ValidTo     *string `json:"validTo"`
	IsActive    *bool   `json:"isActive"`
}

// List returns live offers, or every offer when an admin asks for all of them.
func (s *Service) List(ctx context.Context, sess *auth.Session, all bool) ([]domain.Offer, error) {
	var offers []domain.Offer
	if err := s.DB.WithContext(ctx).Order("valid_from DESC").Find(&offers).Error; err != nil {
		return nil, apperrors.Store(err, "Offer")
	}
	if all && sess != nil && sess.Role == constants.RoleAdmin {
		return offers, nil
	}
	now := s.now()
	live := make([]domain.Offer, 0, len(offers))
	for _, o := range offers {
		if o.LiveAt(now) {
			live = append(live, o)
		}
	}
	return live, nil
}

// Get returns an offer. Non-admins only see live ones.
func (s *Service) Get(ctx context.Context, sess *auth.Session, id uuid.UUID) (*domain.Offer, error) {
	var o domain.Offer
	if err := s.DB.WithContext(ctx).First(&o, "offer_id = ?", id).Error; err != nil {
		return nil, apperrors.Store(err, "Offer")
	}
	if (sess == nil || sess.Role != constants.RoleAdmin) && !o.LiveAt(s.now()) {
		return nil, apperrors.NotFound("Offer not found")
	}
	return &o, nil
}

func parseTime(field, raw string) (*time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperrors.Validation("Invalid "+field, apperrors.FieldError{Field: field, Message: "Use YYYY-MM-DD or RFC 3339"})
}

func (s *Service) apply(o *domain.Offer, in Input, creating bool) error {
	if in.Title != nil || creating {
		title := ""
		if in.Title != nil {
			title = strings.TrimSpace(*in.Title)
		}
		if title == "" {
			return apperrors.Validation("Title is required", apperrors.FieldError{Field: "title", Message: "Required"})
		}
		o.Title = title
	}
	if in.Description != nil {
		o.Description = strings.TrimSpace(*in.Description)
	}
	if in.ImageURL != nil {
		url := strings.TrimSpace(*in.ImageURL)
		o.ImageURL = nil
		if url != "" {
			o.ImageURL = &url
		}
	}
	switch {
	case in.ValidFrom != nil && strings.TrimSpace(*in.ValidFrom) != "":
		t, err := parseTime("validFrom", strings.TrimSpace(*in.ValidFrom))
		if err != nil {
			return err
		}
		o.ValidFrom = *t
	case creating:
		o.ValidFrom = s.now()
	}
	if in.ValidTo != nil {
		o.ValidTo = nil
		if raw := strings.TrimSpace(*in.ValidTo); raw != "" {
			t, err := parseTime("validTo", raw)
			if err != nil {
				return err
			}
			o.ValidTo = t
		}
	}
	if o.ValidTo != nil && o.ValidTo.Before(o.ValidFrom) {
		return apperrors.Validation("Invalid validity window", apperrors.FieldError{Field: "validTo", Message: "Must not be before validFrom"})
	}
	if in.IsActive != nil {
		o.IsActive = *in.IsActive
	}
	return nil
}

func (s *Service) Create(ctx context.Context, actor *uuid.UUID, in Input) (*domain.Offer, error) {
	o := domain.Offer{IsActive: true}
	if err := s.apply(&o, in, true); err != nil {
		return nil, err
	}
	o.Stamp(actor, true)
	if err := s.DB.WithContext(ctx).Create(&o).Error; err != nil {
		return nil, apperrors.Store(err, "Offer")
	}
	return &o, nil
}

func (s *Service) Update(ctx context.Context, actor *uuid.UUID, id uuid.UUID, in Input) (*domain.Offer, error) {
	var o domain.Offer
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&o, "offer_id = ?", id).Error; err != nil {
			return apperrors.Store(err, "Offer")
		}
		if err := s.apply(&o, in, false); err != nil {
			return err
		}
		o.Stamp(actor, false)
		return apperrors.Store(tx.Save(&o).Error, "Offer")
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Delete(&domain.Offer{}, "offer_id = ?", id)
	if res.Error != nil {
		return apperrors.Store(res.Error, "Offer")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Offer not found")
	}
	return nil
}
