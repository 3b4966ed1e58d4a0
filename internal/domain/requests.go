package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Request workflow states.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// IsValidStatus reports whether s is a known workflow state.
func IsValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Review is embedded in every request kind.
type Review struct {
	Status       string     `gorm:"column:status;type:varchar(16);not null;index" json:"status"`
	ReviewedByID *uuid.UUID `gorm:"column:reviewed_by_id;type:uuid" json:"reviewedById"`
	ReviewedDate *time.Time `gorm:"column:reviewed_date" json:"reviewedDate"`
	ReviewNote   *string    `gorm:"column:review_note" json:"reviewNote"`
}

type InvestmentRequest struct {
	InvestmentRequestID uuid.UUID       `gorm:"column:investment_request_id;type:uuid;primaryKey" json:"investmentRequestId"`
	ClientID            uuid.UUID       `gorm:"column:client_id;type:uuid;not null;index" json:"clientId"`
	InvestmentAmount    decimal.Decimal `gorm:"column:investment_amount;type:decimal(18,2);not null" json:"investmentAmount"`
	InvestmentDate      time.Time       `gorm:"column:investment_date;not null" json:"investmentDate"`
	Remark              *string         `gorm:"column:remark" json:"remark"`
	Review              `gorm:"embedded"`
	Audit               `gorm:"embedded"`
}

func (InvestmentRequest) TableName() string {
	return "investment_requests"
}

func (r *InvestmentRequest) BeforeCreate(tx *gorm.DB) error {
	if r.InvestmentRequestID == uuid.Nil {
		r.InvestmentRequestID = uuid.New()
	}
	return nil
}

func (r InvestmentRequest) ClientIDRef() *uuid.UUID {
	id := r.ClientID
	return &id
}

type WithdrawalRequest struct {
	WithdrawalRequestID uuid.UUID       `gorm:"column:withdrawal_request_id;type:uuid;primaryKey" json:"withdrawalRequestId"`
	ClientID            uuid.UUID       `gorm:"column:client_id;type:uuid;not null;index" json:"clientId"`
	WithdrawalAmount    decimal.Decimal `gorm:"column:withdrawal_amount;type:decimal(18,2);not null" json:"withdrawalAmount"`
	WithdrawalDate      time.Time       `gorm:"column:withdrawal_date;not null" json:"withdrawalDate"`
	Remark              *string         `gorm:"column:remark" json:"remark"`
	Review              `gorm:"embedded"`
	Audit               `gorm:"embedded"`
}

func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}

func (r *WithdrawalRequest) BeforeCreate(tx *gorm.DB) error {
	if r.WithdrawalRequestID == uuid.Nil {
		r.WithdrawalRequestID = uuid.New()
	}
	return nil
}

func (r WithdrawalRequest) ClientIDRef() *uuid.UUID {
	id := r.ClientID
	return &id
}

// ReferralRequest is a client introducing a prospect.
type ReferralRequest struct {
	ReferralRequestID uuid.UUID `gorm:"column:referral_request_id;type:uuid;primaryKey" json:"referralRequestId"`
	ClientID          uuid.UUID `gorm:"column:client_id;type:uuid;not null;index" json:"clientId"`
	ReferredName      string    `gorm:"column:referred_name;not null" json:"referredName"`
	ReferredMobile    string    `gorm:"column:referred_mobile;not null" json:"referredMobile"`
	ReferredEmail     *string   `gorm:"column:referred_email" json:"referredEmail"`
	ReferralDate      time.Time `gorm:"column:referral_date;not null" json:"referralDate"`
	Remark            *string   `gorm:"column:remark" json:"remark"`
	Review            `gorm:"embedded"`
	Audit             `gorm:"embedded"`
}

func (ReferralRequest) TableName() string {
	return "referral_requests"
}

func (r *ReferralRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ReferralRequestID == uuid.Nil {
		r.ReferralRequestID = uuid.New()
	}
	return nil
}

func (r ReferralRequest) ClientIDRef() *uuid.UUID {
	id := r.ClientID
	return &id
}
