package domain

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Branch struct {
	BranchID uuid.UUID `gorm:"column:branch_id;type:uuid;primaryKey" json:"branchId"`
	Name     string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Address  *string   `gorm:"column:address" json:"address"`
	City     *string   `gorm:"column:city" json:"city"`
	Pincode  *string   `gorm:"column:pincode" json:"pincode"`
	IsActive bool      `gorm:"column:is_active;not null" json:"isActive"`
	Audit    `gorm:"embedded"`
}

func (Branch) TableName() string {
	return "mst_branches"
}

func (b *Branch) BeforeCreate(tx *gorm.DB) error {
	if b.BranchID == uuid.Nil {
		b.BranchID = uuid.New()
	}
	return nil
}
