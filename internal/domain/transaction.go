package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Indicator ids are fixed and seeded by database.Seed.
const (
	IndicatorInvestment = 1
	IndicatorPayout     = 2
	IndicatorWithdrawal = 3
	IndicatorClosure    = 4
)

// Indicator is the transaction type lookup table.
type Indicator struct {
	IndicatorID int    `gorm:"column:indicator_id;primaryKey;autoIncrement:false" json:"indicatorId"`
	Name        string `gorm:"column:name;not null;uniqueIndex" json:"name"`
}

func (Indicator) TableName() string {
	return "mst_indicators"
}

// Indicators lists every indicator in id order.
var Indicators = []Indicator{
	{IndicatorID: IndicatorInvestment, Name: "Investment"},
	{IndicatorID: IndicatorPayout, Name: "Payout"},
	{IndicatorID: IndicatorWithdrawal, Name: "Withdrawal"},
	{IndicatorID: IndicatorClosure, Name: "Closure"},
}

// IndicatorName returns the display label for an id, "" when unknown.
func IndicatorName(id int) string {
	for _, ind := range Indicators {
		if ind.IndicatorID == id {
			return ind.Name
		}
	}
	return ""
}

// ParseIndicator accepts a name ("payout", "Payout") or its numeric id.
func ParseIndicator(s string) (int, bool) {
	s = strings.TrimSpace(s)
	for _, ind := range Indicators {
		if strings.EqualFold(ind.Name, s) || s == strconv.Itoa(ind.IndicatorID) {
			return ind.IndicatorID, true
		}
	}
	return 0, false
}

// Transaction is an append-only ledger entry.
type Transaction struct {
	TransactionID   uuid.UUID       `gorm:"column:transaction_id;type:uuid;primaryKey" json:"transactionId"`
	TransactionDate time.Time       `gorm:"column:transaction_date;not null;index" json:"transactionDate"`
	ClientID        uuid.UUID       `gorm:"column:client_id;type:uuid;not null;index" json:"clientId"`
	IndicatorID     int             `gorm:"column:indicator_id;not null;index" json:"indicatorId"`
	Amount          decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Remark          *string         `gorm:"column:remark" json:"remark"`
	CreatedByID     *uuid.UUID      `gorm:"column:created_by_id;type:uuid" json:"createdById"`
	CreatedDate     time.Time       `gorm:"column:created_date;autoCreateTime" json:"createdDate"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.TransactionID == uuid.Nil {
		t.TransactionID = uuid.New()
	}
	return nil
}

// ClientIDRef is the scope accessor for transactions.
func (t Transaction) ClientIDRef() *uuid.UUID {
	id := t.ClientID
	return &id
}

// SameEntry reports whether two ledger rows describe the same movement
// (client, indicator, calendar day and amount).
func (t Transaction) SameEntry(o Transaction) bool {
	return t.ClientID == o.ClientID &&
		t.IndicatorID == o.IndicatorID &&
		sameDay(t.TransactionDate, o.TransactionDate) &&
		t.Amount.Equal(o.Amount)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
