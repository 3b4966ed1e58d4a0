package domain

import (
	"encoding/json"

	"wealthdesk-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is a login credential. ClientID links a Client- or Leader-role user to
// their client record; admins usually have none.
type User struct {
	UserID       uuid.UUID      `gorm:"column:user_id;type:uuid;primaryKey" json:"userId"`
	UserName     string         `gorm:"column:user_name;not null;uniqueIndex" json:"userName"`
	PasswordHash string         `gorm:"column:password_hash;not null" json:"-"`
	RoleID       uuid.UUID      `gorm:"column:role_id;type:uuid;not null;index" json:"roleId"`
	ClientID     *uuid.UUID     `gorm:"column:client_id;type:uuid;index" json:"clientId"`
	IsActive     bool           `gorm:"column:is_active;not null" json:"isActive"`
	Audit        `gorm:"embedded"`
	DeletedDate  gorm.DeletedAt `gorm:"column:deleted_date;index" json:"-"`
	DeletedByID  *uuid.UUID     `gorm:"column:deleted_by_id;type:uuid" json:"-"`
}

func (User) TableName() string {
	return "mst_users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}

// Role is a named permission bundle. ModuleAccess is a JSON array of module
// keys the dashboard uses to show or hide navigation.
type Role struct {
	RoleID       uuid.UUID      `gorm:"column:role_id;type:uuid;primaryKey" json:"roleId"`
	Name         string         `gorm:"column:name;not null;uniqueIndex" json:"name"`
	ModuleAccess datatypes.JSON `gorm:"column:module_access" json:"moduleAccess"`
	Audit        `gorm:"embedded"`
}

func (Role) TableName() string {
	return "mst_roles"
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.RoleID == uuid.Nil {
		r.RoleID = uuid.New()
	}
	return nil
}

// Kind resolves the stored name to a role kind.
func (r Role) Kind() constants.Role {
	return constants.ParseRole(r.Name)
}

// Modules decodes ModuleAccess; malformed JSON yields no modules.
func (r Role) Modules() []string {
	if len(r.ModuleAccess) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(r.ModuleAccess, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

// ModulesJSON encodes a module list for ModuleAccess.
func ModulesJSON(modules []string) datatypes.JSON {
	if modules == nil {
		modules = []string{}
	}
	b, _ := json.Marshal(modules)
	return datatypes.JSON(b)
}
