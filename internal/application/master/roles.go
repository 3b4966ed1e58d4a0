package master

import (
	"context"
	"strings"

	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/pkg/apperrors"
	"wealthdesk-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleInput struct {
	Name         *string  `json:"name"`
	ModuleAccess []string `json:"moduleAccess"`
}

func (s *Service) ListRoles(ctx context.Context) ([]domain.Role, error) {
	var roles []domain.Role
	if err := s.DB.WithContext(ctx).Order("name").Find(&roles).Error; err != nil {
		return nil, apperrors.Store(err, "Role")
	}
	return roles, nil
}

func (s *Service) GetRole(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	var r domain.Role
	if err := s.DB.WithContext(ctx).First(&r, "role_id = ?", id).Error; err != nil {
		return nil, apperrors.Store(err, "Role")
	}
	return &r, nil
}

// roleName canonicalizes the three built-in names; anything else is kept as typed.
func roleName(raw string) string {
	raw = strings.TrimSpace(raw)
	if k := constants.ParseRole(raw); k != constants.RoleUnknown {
		return k.String()
	}
	return raw
}

func (s *Service) CreateRole(ctx context.Context, actor *uuid.UUID, in RoleInput) (*domain.Role, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperrors.Validation("Role name is required", apperrors.FieldError{Field: "name", Message: "Required"})
	}
	r := domain.Role{Name: roleName(*in.Name), ModuleAccess: domain.ModulesJSON(in.ModuleAccess)}
	r.Stamp(actor, true)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := exists(tx, &domain.Role{}, "LOWER(name)", strings.ToLower(r.Name), "Role")
		if err != nil {
			return err
		}
		if taken {
			return apperrors.Conflict("Role " + r.Name + " already exists")
		}
		return apperrors.Store(tx.Create(&r).Error, "Role")
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Service) UpdateRole(ctx context.Context, actor *uuid.UUID, id uuid.UUID, in RoleInput) (*domain.Role, error) {
	var r domain.Role
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&r, "role_id = ?", id).Error; err != nil {
			return apperrors.Store(err, "Role")
		}
		if in.Name != nil {
			name := roleName(*in.Name)
			if name == "" {
				return apperrors.Validation("Role name is required", apperrors.FieldError{Field: "name", Message: "Required"})
			}
			if r.Kind() != constants.RoleUnknown && constants.ParseRole(name) != r.Kind() {
				return apperrors.Conflict("Built-in roles cannot be renamed")
			}
			if !strings.EqualFold(name, r.Name) {
				var n int64
				if err := tx.Model(&domain.Role{}).Where("LOWER(name) = ? AND role_id <> ?", strings.ToLower(name), id).Count(&n).Error; err != nil {
					return apperrors.Store(err, "Role")
				}
				if n > 0 {
					return apperrors.Conflict("Role " + name + " already exists")
				}
			}
			r.Name = name
		}
		if in.ModuleAccess != nil {
			r.ModuleAccess = domain.ModulesJSON(in.ModuleAccess)
		}
		r.Stamp(actor, false)
		return apperrors.Store(tx.Save(&r).Error, "Role")
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteRole removes a custom role that no user holds. The built-in roles stay.
func (s *Service) DeleteRole(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r domain.Role
		if err := tx.First(&r, "role_id = ?", id).Error; err != nil {
			return apperrors.Store(err, "Role")
		}
		if r.Kind() != constants.RoleUnknown {
			return apperrors.Conflict("Built-in roles cannot be deleted")
		}
		inUse, err := exists(tx, &domain.User{}, "role_id", id, "User")
		if err != nil {
			return err
		}
		if inUse {
			return apperrors.Conflict("Role is assigned to users")
		}
		return apperrors.Store(tx.Delete(&r).Error, "Role")
	})
}
