package transactions

import (
	"context"
	"errors"
	"strings"
	"time"

	"wealthdesk-backend/internal/application/auth"
	"wealthdesk-backend/internal/application/scope"
	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Filter narrows the ledger listing. From and To are inclusive calendar days.
type Filter struct {
	ClientID    *uuid.UUID
	IndicatorID int
	// Active filters on the owning client's active flag.
	Active *bool
	From   *time.Time
	To     *time.Time
}

// View is a ledger entry with its client and type resolved.
type View struct {
	TransactionID   uuid.UUID  `json:"transactionId"`
	TransactionDate time.Time  `json:"transactionDate"`
	ClientID        uuid.UUID  `json:"clientId"`
	ClientCode      string     `json:"clientCode"`
	ClientName      string     `json:"clientName"`
	IndicatorID     int        `json:"indicatorId"`
	Type            string     `json:"type"`
	Amount          float64    `json:"amount"`
	Remark          *string    `json:"remark"`
	CreatedByID     *uuid.UUID `json:"createdById"`
	CreatedDate     time.Time  `json:"createdDate"`
}

type CreateInput struct {
	ClientID        string          `json:"clientId"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate string          `json:"transactionDate"`
	Remark          *string         `json:"remark"`
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// inRange compares on calendar days so a To of 2024-06-30 includes entries
// stamped later that day.
func inRange(t time.Time, from, to *time.Time) bool {
	day := dayStart(t)
	if from != nil && day.Before(dayStart(*from)) {
		return false
	}
	if to != nil && day.After(dayStart(*to)) {
		return false
	}
	return true
}

// List returns the ledger entries visible to sess, newest first.
func (s *Service) List(ctx context.Context, sess *auth.Session, f Filter) ([]View, error) {
	if f.IndicatorID != 0 && domain.IndicatorName(f.IndicatorID) == "" {
		return nil, apperrors.Validation("Invalid transaction type",
			apperrors.FieldError{Field: "type", Message: "Use investment, payout, withdrawal or closure"})
	}
	if f.From != nil && f.To != nil && dayStart(*f.From).After(dayStart(*f.To)) {
		return nil, apperrors.Validation("Invalid date range",
			apperrors.FieldError{Field: "from", Message: "from must not be after to"})
	}
	sc, err := scope.Load(ctx, s.DB, sess)
	if err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)
	q := sc.Restrict(db, "client_id")
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.IndicatorID != 0 {
		q = q.Where("indicator_id = ?", f.IndicatorID)
	}
	if f.Active != nil {
		q = q.Where("client_id IN (?)", db.Model(&domain.Client{}).Select("client_id").Where("is_active = ?", *f.Active))
	}
	var txs []domain.Transaction
	if err := q.Order("transaction_date DESC").Find(&txs).Error; err != nil {
		return nil, apperrors.Store(err, "Transaction")
	}

	kept := txs[:0]
	for _, t := range txs {
		if inRange(t.TransactionDate, f.From, f.To) {
			kept = append(kept, t)
		}
	}
	return s.views(db, kept)
}

func (s *Service) views(db *gorm.DB, txs []domain.Transaction) ([]View, error) {
	out := make([]View, 0, len(txs))
	if len(txs) == 0 {
		return out, nil
	}
	idSet := map[uuid.UUID]bool{}
	for _, t := range txs {
		idSet[t.ClientID] = true
	}
	ids := make([]uuid.UUID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	var clients []domain.Client
	if err := db.Unscoped().Select("client_id", "code", "name").Where("client_id IN ?", ids).Find(&clients).Error; err != nil {
		return nil, apperrors.Store(err, "Client")
	}
	byID := make(map[uuid.UUID]domain.Client, len(clients))
	for _, c := range clients {
		byID[c.ClientID] = c
	}

	for _, t := range txs {
		c := byID[t.ClientID]
		out = append(out, View{
			TransactionID:   t.TransactionID,
			TransactionDate: t.TransactionDate,
			ClientID:        t.ClientID,
			ClientCode:      c.Code,
			ClientName:      c.Name,
			IndicatorID:     t.IndicatorID,
			Type:            domain.IndicatorName(t.IndicatorID),
			Amount:          t.Amount.Round(2).InexactFloat64(),
			Remark:          t.Remark,
			CreatedByID:     t.CreatedByID,
			CreatedDate:     t.CreatedDate,
		})
	}
	return out, nil
}

// Create posts one ledger entry. An entry identical to an existing one
// (same client, type, day and amount) is rejected.
func (s *Service) Create(ctx context.Context, sess *auth.Session, in CreateInput) (*View, error) {
	var details []apperrors.FieldError
	clientID, err := uuid.Parse(strings.TrimSpace(in.ClientID))
	if err != nil {
		details = append(details, apperrors.FieldError{Field: "clientId", Message: "Must be a UUID"})
	}
	indicator, ok := domain.ParseIndicator(in.Type)
	if !ok {
		details = append(details, apperrors.FieldError{Field: "type", Message: "Use investment, payout, withdrawal or closure"})
	}
	if !in.Amount.IsPositive() {
		details = append(details, apperrors.FieldError{Field: "amount", Message: "Must be greater than zero"})
	}
	date := dayStart(s.now())
	if raw := strings.TrimSpace(in.TransactionDate); raw != "" {
		parsed, ok := parseDate(raw)
		if !ok {
			details = append(details, apperrors.FieldError{Field: "transactionDate", Message: "Use YYYY-MM-DD"})
		}
		date = parsed
	}
	if len(details) > 0 {
		return nil, apperrors.Validation("Invalid transaction", details...)
	}

	var remark *string
	if in.Remark != nil && strings.TrimSpace(*in.Remark) != "" {
		r := strings.TrimSpace(*in.Remark)
		remark = &r
	}
	t := domain.Transaction{
		ClientID:        clientID,
		IndicatorID:     indicator,
		TransactionDate: date,
		Amount:          in.Amount.Round(2),
		Remark:          remark,
		CreatedByID:     sess.Actor(),
	}

	db := s.DB.WithContext(ctx)
	err = db.Transaction(func(tx *gorm.DB) error {
		var c domain.Client
		err := tx.Select("client_id").First(&c, "client_id = ?", clientID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Validation("Invalid transaction", apperrors.FieldError{Field: "clientId", Message: "Client not found"})
		}
		if err != nil {
			return apperrors.Store(err, "Client")
		}
		var existing []domain.Transaction
		if err := tx.Where("client_id = ? AND indicator_id = ?", clientID, indicator).Find(&existing).Error; err != nil {
			return apperrors.Store(err, "Transaction")
		}
		for _, e := range existing {
			if e.SameEntry(t) {
				return apperrors.Conflict("An identical transaction already exists")
			}
		}
		return apperrors.Store(tx.Create(&t).Error, "Transaction")
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("transaction_id", t.TransactionID.String()).Str("client_id", clientID.String()).Int("indicator_id", indicator).Msg("transactions: entry created")

	views, err := s.views(db, []domain.Transaction{t})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseFilter reads the list query parameters. status is "active" or
// "inactive"; type is an indicator name or id.
func ParseFilter(clientID, kind, status, from, to string) (Filter, error) {
	var f Filter
	var details []apperrors.FieldError
	if v := strings.TrimSpace(clientID); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			details = append(details, apperrors.FieldError{Field: "clientId", Message: "Must be a UUID"})
		} else {
			f.ClientID = &id
		}
	}
	if v := strings.TrimSpace(kind); v != "" {
		ind, ok := domain.ParseIndicator(v)
		if !ok {
			details = append(details, apperrors.FieldError{Field: "type", Message: "Use investment, payout, withdrawal or closure"})
		}
		f.IndicatorID = ind
	}
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "":
	case "active":
		active := true
		f.Active = &active
	case "inactive":
		active := false
		f.Active = &active
	default:
		details = append(details, apperrors.FieldError{Field: "status", Message: "Use active or inactive"})
	}
	for _, d := range []struct {
		field, raw string
		dst        **time.Time
	}{{"from", from, &f.From}, {"to", to, &f.To}} {
		if v := strings.TrimSpace(d.raw); v != "" {
			t, ok := parseDate(v)
			if !ok {
				details = append(details, apperrors.FieldError{Field: d.field, Message: "Use YYYY-MM-DD"})
				continue
			}
			*d.dst = &t
		}
	}
	if len(details) > 0 {
		return Filter{}, apperrors.Validation("Invalid transaction filter", details...)
	}
	return f, nil
}
