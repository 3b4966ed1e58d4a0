package master

import (
	"context"
	"strings"

	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/pkg/apperrors"
	"wealthdesk-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BranchInput struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	Pincode  *string `json:"pincode"`
	IsActive *bool   `json:"isActive"`
}

func (s *Service) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	var branches []domain.Branch
	if err := s.DB.WithContext(ctx).Order("name").Find(&branches).Error; err != nil {
		return nil, apperrors.Store(err, "Branch")
	}
	return branches, nil
}

func (s *Service) GetBranch(ctx context.Context, id uuid.UUID) (*domain.Branch, error) {
	var b domain.Branch
	if err := s.DB.WithContext(ctx).First(&b, "branch_id = ?", id).Error; err != nil {
		return nil, apperrors.Store(err, "Branch")
	}
	return &b, nil
}

func applyBranch(tx *gorm.DB, b *domain.Branch, in BranchInput, creating bool) error {
	if in.Name != nil || creating {
		name := ""
		if in.Name != nil {
			name = strings.TrimSpace(*in.Name)
		}
		if name == "" {
			return apperrors.Validation("Branch name is required", apperrors.FieldError{Field: "name", Message: "Required"})
		}
		var n int64
		if err := tx.Model(&domain.Branch{}).Where("LOWER(name) = ? AND branch_id <> ?", strings.ToLower(name), b.BranchID).Count(&n).Error; err != nil {
			return apperrors.Store(err, "Branch")
		}
		if n > 0 {
			return apperrors.Conflict("Branch " + name + " already exists")
		}
		b.Name = name
	}
	if p := trimmed(in.Pincode); p != nil {
		if *p != "" && !validation.IsValidPincode(*p) {
			return apperrors.Validation("Invalid branch details", apperrors.FieldError{Field: "pincode", Message: "Invalid pincode"})
		}
		b.Pincode = nullable(p)
	}
	if in.Address != nil {
		b.Address = nullable(trimmed(in.Address))
	}
	if in.City != nil {
		b.City = nullable(trimmed(in.City))
	}
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}
	return nil
}

func (s *Service) CreateBranch(ctx context.Context, actor *uuid.UUID, in BranchInput) (*domain.Branch, error) {
	b := domain.Branch{IsActive: true}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyBranch(tx, &b, in, true); err != nil {
			return err
		}
		b.Stamp(actor, true)
		return apperrors.Store(tx.Create(&b).Error, "Branch")
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Service) UpdateBranch(ctx context.Context, actor *uuid.UUID, id uuid.UUID, in BranchInput) (*domain.Branch, error) {
	var b domain.Branch
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&b, "branch_id = ?", id).Error; err != nil {
			return apperrors.Store(err, "Branch")
		}
		if err := applyBranch(tx, &b, in, false); err != nil {
			return err
		}
		b.Stamp(actor, false)
		return apperrors.Store(tx.Save(&b).Error, "Branch")
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBranch removes a branch no client belongs to.
func (s *Service) DeleteBranch(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b domain.Branch
		if err := tx.First(&b, "branch_id = ?", id).Error; err != nil {
			return apperrors.Store(err, "Branch")
		}
		inUse, err := exists(tx, &domain.Client{}, "branch_id", id, "Client")
		if err != nil {
			return err
		}
		if inUse {
			return apperrors.Conflict("Branch still has clients")
		}
		return apperrors.Store(tx.Delete(&b).Error, "Branch")
	})
}
