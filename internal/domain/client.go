package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is an investor record. ReferenceID points at the referring client
// (the leader); scoping only follows it one level.
type Client struct {
	ClientID    uuid.UUID      `gorm:"column:client_id;type:uuid;primaryKey" json:"clientId"`
	Code        string         `gorm:"column:code;type:varchar(32);not null;uniqueIndex" json:"code"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Mobile      *string        `gorm:"column:mobile" json:"mobile"`
	Email       *string        `gorm:"column:email;index" json:"email"`
	DOB         *time.Time     `gorm:"column:dob" json:"dob"`
	PANNo       *string        `gorm:"column:pan_no;index" json:"panNo"`
	AadhaarNo   *string        `gorm:"column:aadhaar_no" json:"aadhaarNo"`
	BranchID    *uuid.UUID     `gorm:"column:branch_id;type:uuid;index" json:"branchId"`
	Address     *string        `gorm:"column:address" json:"address"`
	City        *string        `gorm:"column:city" json:"city"`
	Pincode     *string        `gorm:"column:pincode" json:"pincode"`
	ReferenceID *uuid.UUID     `gorm:"column:reference_id;type:uuid;index" json:"referenceId"`
	IsActive    bool           `gorm:"column:is_active;not null" json:"isActive"`
	Audit       `gorm:"embedded"`
	DeletedDate gorm.DeletedAt `gorm:"column:deleted_date;index" json:"-"`
	DeletedByID *uuid.UUID     `gorm:"column:deleted_by_id;type:uuid" json:"-"`
}

func (Client) TableName() string {
	return "mst_clients"
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ClientID == uuid.Nil {
		c.ClientID = uuid.New()
	}
	return nil
}

// ClientIDRef returns a pointer to the client's id, for scope accessors.
func (c Client) ClientIDRef() *uuid.UUID {
	id := c.ClientID
	return &id
}
