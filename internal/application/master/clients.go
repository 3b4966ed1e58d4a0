package master

import (
	"context"
	"strings"
	"time"

	"wealthdesk-backend/internal/application/auth"
	"wealthdesk-backend/internal/application/referrals"
	"wealthdesk-backend/internal/application/scope"
	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/pkg/apperrors"
	"wealthdesk-backend/internal/pkg/pagination"
	"wealthdesk-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ClientFilter narrows the client list. Zero values mean "any".
type ClientFilter struct {
	Search      string
	BranchID    *uuid.UUID
	ReferenceID *uuid.UUID
	Active      *bool
}

type ClientInput struct {
	Code        *string `json:"code"`
	Name        *string `json:"name"`
	Mobile      *string `json:"mobile"`
	Email       *string `json:"email"`
	DOB         *string `json:"dob"`
	PANNo       *string `json:"panNo"`
	AadhaarNo   *string `json:"aadhaarNo"`
	BranchID    *string `json:"branchId"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	Pincode     *string `json:"pincode"`
	ReferenceID *string `json:"referenceId"`
	IsActive    *bool   `json:"isActive"`
}

// ListClients returns one page of the clients visible to sess.
func (s *Service) ListClients(ctx context.Context, sess *auth.Session, f ClientFilter, page pagination.Params) ([]domain.Client, pagination.Meta, error) {
	sc, err := scope.Load(ctx, s.DB, sess)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	q := sc.Restrict(s.DB.WithContext(ctx).Model(&domain.Client{}), "client_id")
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		like := "%" + term + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", like, like)
	}
	if f.BranchID != nil {
		q = q.Where("branch_id = ?", *f.BranchID)
	}
	if f.ReferenceID != nil {
		q = q.Where("reference_id = ?", *f.ReferenceID)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, apperrors.Store(err, "Client")
	}
	var clients []domain.Client
	if err := page.Scope(q.Order("code")).Find(&clients).Error; err != nil {
		return nil, pagination.Meta{}, apperrors.Store(err, "Client")
	}
	return clients, page.Meta(total), nil
}

// GetClient returns a client visible to sess. Clients outside the scope are
// reported as not found.
func (s *Service) GetClient(ctx context.Context, sess *auth.Session, id uuid.UUID) (*domain.Client, error) {
	sc, err := scope.Load(ctx, s.DB, sess)
	if err != nil {
		return nil, err
	}
	if !sc.Allows(id) {
		return nil, apperrors.NotFound("Client not found")
	}
	var c domain.Client
	if err := s.DB.WithContext(ctx).First(&c, "client_id = ?", id).Error; err != nil {
		return nil, apperrors.Store(err, "Client")
	}
	return &c, nil
}

func parseDate(raw string) (*time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperrors.Validation("Invalid date of birth", apperrors.FieldError{Field: "dob", Message: "Use YYYY-MM-DD"})
}

// applyClient validates in and copies it onto c. Sending "" for an optional
// field clears it.
func (s *Service) applyClient(tx *gorm.DB, c *domain.Client, in ClientInput, creating bool) error {
	var details []apperrors.FieldError
	bad := func(field, msg string) {
		details = append(details, apperrors.FieldError{Field: field, Message: msg})
	}

	if code := trimmed(in.Code); code != nil || creating {
		if code == nil || *code == "" {
			bad("code", "Required")
		} else {
			c.Code = *code
		}
	}
	if name := trimmed(in.Name); name != nil || creating {
		if name == nil || *name == "" {
			bad("name", "Required")
		} else {
			c.Name = *name
		}
	}
	if in.Mobile != nil {
		m := validation.NormalizeMobile(*in.Mobile)
		if m != "" && !validation.IsValidMobile(m) {
			bad("mobile", "Invalid mobile number")
		}
		c.Mobile = nullable(&m)
	}
	if in.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*in.Email))
		if e != "" && !validation.IsValidEmail(e) {
			bad("email", "Invalid email format")
		}
		c.Email = nullable(&e)
	}
	if in.PANNo != nil {
		p := validation.NormalizePAN(*in.PANNo)
		if p != "" && !validation.IsValidPAN(p) {
			bad("panNo", "Invalid PAN")
		}
		c.PANNo = nullable(&p)
	}
	if in.AadhaarNo != nil {
		a := validation.NormalizeAadhaar(*in.AadhaarNo)
		if a != "" && !validation.IsValidAadhaar(a) {
			bad("aadhaarNo", "Invalid Aadhaar number")
		}
		c.AadhaarNo = nullable(&a)
	}
	if p := trimmed(in.Pincode); p != nil {
		if *p != "" && !validation.IsValidPincode(*p) {
			bad("pincode", "Invalid pincode")
		}
		c.Pincode = nullable(p)
	}
	if in.Address != nil {
		c.Address = nullable(trimmed(in.Address))
	}
	if in.City != nil {
		c.City = nullable(trimmed(in.City))
	}
	if d := trimmed(in.DOB); d != nil {
		c.DOB = nil
		if *d != "" {
			t, err := parseDate(*d)
			switch {
			case err != nil:
				bad("dob", "Use YYYY-MM-DD")
			case t.After(s.now()):
				bad("dob", "Date of birth is in the future")
			default:
				c.DOB = t
			}
		}
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if len(details) > 0 {
		return apperrors.Validation("Invalid client details", details...)
	}

	if in.BranchID != nil {
		id, err := parseID("branchId", *in.BranchID)
		if err != nil {
			return err
		}
		if id != nil {
			ok, err := exists(tx, &domain.Branch{}, "branch_id", *id, "Branch")
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.Validation("Invalid client details", apperrors.FieldError{Field: "branchId", Message: "Branch not found"})
			}
		}
		c.BranchID = id
	}
	if in.ReferenceID != nil {
		id, err := parseID("referenceId", *in.ReferenceID)
		if err != nil {
			return err
		}
		c.ReferenceID = id
	}
	if in.Code != nil {
		var n int64
		err := tx.Unscoped().Model(&domain.Client{}).
			Where("code = ? AND client_id <> ?", c.Code, c.ClientID).
			Count(&n).Error
		if err != nil {
			return apperrors.Store(err, "Client")
		}
		if n > 0 {
			return apperrors.Conflict("Client code " + c.Code + " already exists")
		}
	}
	return nil
}

func (s *Service) CreateClient(ctx context.Context, actor *uuid.UUID, in ClientInput) (*domain.Client, error) {
	c := domain.Client{ClientID: uuid.New(), IsActive: true}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.applyClient(tx, &c, in, true); err != nil {
			return err
		}
		if err := referrals.Check(ctx, tx, c.ClientID, c.ReferenceID); err != nil {
			return err
		}
		c.Stamp(actor, true)
		return apperrors.Store(tx.Create(&c).Error, "Client")
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("client_id", c.ClientID.String()).Str("code", c.Code).Msg("master: client created")
	return &c, nil
}

func (s *Service) UpdateClient(ctx context.Context, actor *uuid.UUID, id uuid.UUID, in ClientInput) (*domain.Client, error) {
	var c domain.Client
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, "client_id = ?", id).Error; err != nil {
			return apperrors.Store(err, "Client")
		}
		if err := s.applyClient(tx, &c, in, false); err != nil {
			return err
		}
		if in.ReferenceID != nil {
			if err := referrals.Check(ctx, tx, c.ClientID, c.ReferenceID); err != nil {
				return err
			}
		}
		c.Stamp(actor, false)
		return apperrors.Store(tx.Save(&c).Error, "Client")
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteClient soft-deletes a client and deactivates the logins linked to it.
// Its code stays reserved.
func (s *Service) DeleteClient(ctx context.Context, actor *uuid.UUID, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c domain.Client
		if err := tx.First(&c, "client_id = ?", id).Error; err != nil {
			return apperrors.Store(err, "Client")
		}
		if err := tx.Model(&c).Updates(map[string]interface{}{"deleted_by_id": actor, "is_active": false}).Error; err != nil {
			return apperrors.Store(err, "Client")
		}
		if err := tx.Delete(&c).Error; err != nil {
			return apperrors.Store(err, "Client")
		}
		err := tx.Model(&domain.User{}).Where("client_id = ?", id).Update("is_active", false).Error
		return apperrors.Store(err, "User")
	})
}
