// Package requests handles client-initiated investment, withdrawal and
// referral requests and their review by an admin.
package requests

import (
	"context"
	"strings"
	"time"

	"wealthdesk-backend/internal/application/auth"
	"wealthdesk-backend/internal/application/emails"
	"wealthdesk-backend/internal/application/scope"
	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Request kinds, as used in routes and notification emails.
const (
	KindInvestment = "investment"
	KindWithdrawal = "withdrawal"
	KindReferral   = "referral"
)

type Service struct {
	DB          *gorm.DB
	EmailSender emails.Sender
	Now         func() time.Time
}

func NewService(db *gorm.DB, sender emails.Sender) *Service {
	return &Service{DB: db, EmailSender: sender, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Filter narrows a request list. Status "" means any.
type Filter struct {
	Status   string
	ClientID *uuid.UUID
}

// ReviewInput is an admin decision on a pending request.
type ReviewInput struct {
	Status string  `json:"status"`
	Note   *string `json:"note"`
}

// list loads the requests of type T visible to sess, newest first.
func list[T scope.Record](ctx context.Context, db *gorm.DB, sess *auth.Session, f Filter, dateColumn string) ([]T, error) {
	sc, err := scope.Load(ctx, db, sess)
	if err != nil {
		return nil, err
	}
	if f.Status != "" && !domain.IsValidStatus(f.Status) {
		return nil, apperrors.Validation("Invalid status filter",
			apperrors.FieldError{Field: "status", Message: "Use pending, approved or rejected"})
	}
	q := sc.Restrict(db.WithContext(ctx), "client_id")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	var out []T
	if err := q.Order(dateColumn + " DESC").Find(&out).Error; err != nil {
		return nil, apperrors.Store(err, "Request")
	}
	return scope.Filter(sc, out), nil
}

// actingClient resolves the client a new request is for. Sessions tied to a
// client default to their own; admins must name one.
func actingClient(ctx context.Context, db *gorm.DB, sess *auth.Session, raw string) (*domain.Client, error) {
	sc, err := scope.Load(ctx, db, sess)
	if err != nil {
		return nil, err
	}
	var id uuid.UUID
	switch raw = strings.TrimSpace(raw); {
	case raw != "":
		id, err = uuid.Parse(raw)
		if err != nil {
			return nil, apperrors.Validation("Invalid clientId", apperrors.FieldError{Field: "clientId", Message: "Must be a UUID"})
		}
	case sess != nil && sess.ClientID != nil:
		id = *sess.ClientID
	default:
		return nil, apperrors.Validation("clientId is required", apperrors.FieldError{Field: "clientId", Message: "Required"})
	}
	if !sc.Allows(id) {
		return nil, apperrors.Forbidden("You cannot create requests for this client")
	}
	var c domain.Client
	if err := db.WithContext(ctx).First(&c, "client_id = ?", id).Error; err != nil {
		return nil, apperrors.Store(err, "Client")
	}
	if !c.IsActive {
		return nil, apperrors.Validation("Client is inactive", apperrors.FieldError{Field: "clientId", Message: "Client is inactive"})
	}
	return &c, nil
}

// parseDay reads an optional YYYY-MM-DD (or RFC 3339) date, defaulting to today.
func parseDay(field, raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.Validation("Invalid "+field, apperrors.FieldError{Field: field, Message: "Use YYYY-MM-DD"})
}

func optional(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

// review moves a pending request of type T to approved or rejected and
// returns the updated record.
func review[T any](ctx context.Context, s *Service, idColumn string, id uuid.UUID, actor *uuid.UUID, in ReviewInput, reviewOf func(*T) *domain.Review) (*T, error) {
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status != domain.StatusApproved && status != domain.StatusRejected {
		return nil, apperrors.Validation("Invalid status",
			apperrors.FieldError{Field: "status", Message: "Use approved or rejected"})
	}

	var rec T
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rec, idColumn+" = ?", id).Error; err != nil {
			return apperrors.Store(err, "Request")
		}
		r := reviewOf(&rec)
		if r.Status != domain.StatusPending {
			return apperrors.Conflict("Request is already " + r.Status)
		}
		at := s.now()
		updates := map[string]interface{}{
			"status":              status,
			"reviewed_by_id":      actor,
			"reviewed_date":       at,
			"review_note":         optional(in.Note),
			"last_modified_by_id": actor,
		}
		res := tx.Model(&rec).Where("status = ?", domain.StatusPending).Updates(updates)
		if res.Error != nil {
			return apperrors.Store(res.Error, "Request")
		}
		if res.RowsAffected == 0 {
			return apperrors.Conflict("Request was reviewed concurrently")
		}
		return apperrors.Store(tx.First(&rec, idColumn+" = ?", id).Error, "Request")
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// notify tells the client about a review decision. Delivery failures are
// logged, never returned.
func (s *Service) notify(ctx context.Context, clientID uuid.UUID, kind, status string) {
	if s.EmailSender == nil {
		return
	}
	var c domain.Client
	if err := s.DB.WithContext(ctx).First(&c, "client_id = ?", clientID).Error; err != nil {
		log.Warn().Err(err).Str("client_id", clientID.String()).Msg("requests: client lookup for notification failed")
		return
	}
	if c.Email == nil || *c.Email == "" {
		return
	}
	if err := s.EmailSender.SendRequestStatus(ctx, *c.Email, c.Name, kind, status); err != nil {
		log.Error().Err(err).Str("client_id", clientID.String()).Str("kind", kind).Msg("requests: status email failed")
	}
}
