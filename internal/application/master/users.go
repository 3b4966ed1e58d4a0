package master

import (
	"context"
	"strings"

	"wealthdesk-backend/internal/application/auth"
	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/pkg/apperrors"
	"wealthdesk-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// UserView is a user with its role name resolved.
type UserView struct {
	domain.User
	RoleName string `json:"roleName"`
}

type UserInput struct {
	UserName *string `json:"userName"`
	Password *string `json:"password"`
	RoleID   *string `json:"roleId"`
	ClientID *string `json:"clientId"`
	IsActive *bool   `json:"isActive"`
}

func (s *Service) views(tx *gorm.DB, users []domain.User) ([]UserView, error) {
	var roles []domain.Role
	if err := tx.Find(&roles).Error; err != nil {
		return nil, apperrors.Store(err, "Role")
	}
	names := make(map[uuid.UUID]string, len(roles))
	for _, r := range roles {
		names[r.RoleID] = r.Name
	}
	out := make([]UserView, len(users))
	for i, u := range users {
		out[i] = UserView{User: u, RoleName: names[u.RoleID]}
	}
	return out, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]UserView, error) {
	db := s.DB.WithContext(ctx)
	var users []domain.User
	if err := db.Order("user_name").Find(&users).Error; err != nil {
		return nil, apperrors.Store(err, "User")
	}
	return s.views(db, users)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*UserView, error) {
	db := s.DB.WithContext(ctx)
	var u domain.User
	if err := db.First(&u, "user_id = ?", id).Error; err != nil {
		return nil, apperrors.Store(err, "User")
	}
	v, err := s.views(db, []domain.User{u})
	if err != nil {
		return nil, err
	}
	return &v[0], nil
}

// applyUser validates in and copies it onto u. Create requires every
// identifying field; update only touches what was sent.
func applyUser(tx *gorm.DB, u *domain.User, in UserInput, creating bool) error {
	var details []apperrors.FieldError
	if in.UserName != nil || creating {
		name := ""
		if in.UserName != nil {
			name = strings.ToLower(strings.TrimSpace(*in.UserName))
		}
		if name == "" {
			details = append(details, apperrors.FieldError{Field: "userName", Message: "Required"})
		}
		u.UserName = name
	}
	if in.Password != nil || creating {
		if in.Password == nil || !validation.IsValidPassword(*in.Password) {
			details = append(details, apperrors.FieldError{Field: "password", Message: auth.ErrInvalidPassword.Message})
		} else {
			hash, err := auth.HashPassword(*in.Password)
			if err != nil {
				return apperrors.Internal(err)
			}
			u.PasswordHash = hash
		}
	}
	if in.RoleID == nil && creating {
		details = append(details, apperrors.FieldError{Field: "roleId", Message: "Required"})
	}
	if len(details) > 0 {
		return apperrors.Validation("Invalid user details", details...)
	}

	if in.RoleID != nil {
		id, err := parseID("roleId", *in.RoleID)
		if err != nil {
			return err
		}
		if id == nil {
			return apperrors.Validation("Invalid user details", apperrors.FieldError{Field: "roleId", Message: "Required"})
		}
		ok, err := exists(tx, &domain.Role{}, "role_id", *id, "Role")
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.Validation("Invalid user details", apperrors.FieldError{Field: "roleId", Message: "Role not found"})
		}
		u.RoleID = *id
	}
	if in.ClientID != nil {
		id, err := parseID("clientId", *in.ClientID)
		if err != nil {
			return err
		}
		if id != nil {
			ok, err := exists(tx, &domain.Client{}, "client_id", *id, "Client")
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.Validation("Invalid user details", apperrors.FieldError{Field: "clientId", Message: "Client not found"})
			}
		}
		u.ClientID = id
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	return nil
}

func userNameTaken(tx *gorm.DB, name string, except uuid.UUID) error {
	var n int64
	err := tx.Unscoped().Model(&domain.User{}).
		Where("LOWER(user_name) = ? AND user_id <> ?", name, except).
		Count(&n).Error
	if err != nil {
		return apperrors.Store(err, "User")
	}
	if n > 0 {
		return apperrors.Conflict("User name " + name + " is already taken")
	}
	return nil
}

func (s *Service) CreateUser(ctx context.Context, actor *uuid.UUID, in UserInput) (*UserView, error) {
	u := domain.User{IsActive: true}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyUser(tx, &u, in, true); err != nil {
			return err
		}
		if err := userNameTaken(tx, u.UserName, uuid.Nil); err != nil {
			return err
		}
		u.Stamp(actor, true)
		return apperrors.Store(tx.Create(&u).Error, "User")
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", u.UserID.String()).Msg("master: user created")
	return s.GetUser(ctx, u.UserID)
}

func (s *Service) UpdateUser(ctx context.Context, actor *uuid.UUID, id uuid.UUID, in UserInput) (*UserView, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u domain.User
		if err := tx.First(&u, "user_id = ?", id).Error; err != nil {
			return apperrors.Store(err, "User")
		}
		if err := applyUser(tx, &u, in, false); err != nil {
			return err
		}
		if in.UserName != nil {
			if err := userNameTaken(tx, u.UserName, u.UserID); err != nil {
				return err
			}
		}
		u.Stamp(actor, false)
		return apperrors.Store(tx.Save(&u).Error, "User")
	})
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// DeleteUser soft-deletes a user. Users cannot delete themselves.
func (s *Service) DeleteUser(ctx context.Context, actor *uuid.UUID, id uuid.UUID) error {
	if actor != nil && *actor == id {
		return apperrors.Validation("You cannot delete your own account")
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u domain.User
		if err := tx.First(&u, "user_id = ?", id).Error; err != nil {
			return apperrors.Store(err, "User")
		}
		if err := tx.Model(&u).Updates(map[string]interface{}{"deleted_by_id": actor, "is_active": false}).Error; err != nil {
			return apperrors.Store(err, "User")
		}
		return apperrors.Store(tx.Delete(&u).Error, "User")
	})
}
