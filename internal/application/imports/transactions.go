package imports

import (
	"context"
	"errors"
	"strings"
	"time"

	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/metrics"
	"wealthdesk-backend/internal/pkg/apperrors"
	"wealthdesk-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ledger caches client lookups and existing entries for one batch. Every
// query gets its own timeout.
type ledger struct {
	ctx      context.Context
	db       *gorm.DB
	timeout  time.Duration
	byPAN    map[string]*domain.Client
	byCode   map[string]*domain.Client
	existing map[uuid.UUID][]domain.Transaction
}

func (s *Service) newLedger(ctx context.Context) *ledger {
	return &ledger{
		ctx:      ctx,
		db:       s.DB,
		timeout:  s.StoreTimeout,
		byPAN:    map[string]*domain.Client{},
		byCode:   map[string]*domain.Client{},
		existing: map[uuid.UUID][]domain.Transaction{},
	}
}

func (l *ledger) query() (*gorm.DB, context.CancelFunc) {
	ctx, cancel := withTimeout(l.ctx, l.timeout)
	return l.db.WithContext(ctx), cancel
}

func (l *ledger) clientBy(column, value string, cache map[string]*domain.Client) (*domain.Client, error) {
	if c, ok := cache[value]; ok {
		return c, nil
	}
	db, cancel := l.query()
	defer cancel()
	var c domain.Client
	err := db.Where(column+" = ?", value).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cache[value] = nil
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Store(err, "Client")
	}
	cache[value] = &c
	return &c, nil
}

// entriesFor loads a client's ledger once per batch.
func (l *ledger) entriesFor(clientID uuid.UUID) ([]domain.Transaction, error) {
	if txs, ok := l.existing[clientID]; ok {
		return txs, nil
	}
	db, cancel := l.query()
	defer cancel()
	var txs []domain.Transaction
	if err := db.Where("client_id = ?", clientID).Find(&txs).Error; err != nil {
		return nil, apperrors.Store(err, "Transaction")
	}
	l.existing[clientID] = txs
	return txs, nil
}

// add inserts t unless an identical entry exists. It reports whether t was skipped.
func (l *ledger) add(t domain.Transaction) (bool, error) {
	txs, err := l.entriesFor(t.ClientID)
	if err != nil {
		return false, err
	}
	for _, e := range txs {
		if e.SameEntry(t) {
			return true, nil
		}
	}
	db, cancel := l.query()
	defer cancel()
	if err := db.Create(&t).Error; err != nil {
		return false, apperrors.Store(err, "Transaction")
	}
	l.existing[t.ClientID] = append(txs, t)
	return false, nil
}

type ledgerInput struct {
	date   time.Time
	amount decimal.Decimal
	remark *string
}

func parseLedgerFields(r Row, dateKeys []string, amountKeys []string, remarkKeys []string) (*ledgerInput, error) {
	rawDate, rawAmount := r.Get(dateKeys...), r.Get(amountKeys...)
	var missing []string
	if rawDate == "" {
		missing = append(missing, dateKeys[0])
	}
	if rawAmount == "" {
		missing = append(missing, amountKeys[0])
	}
	if len(missing) > 0 {
		return nil, rowErr("missing required field: " + strings.Join(missing, ", "))
	}
	date, err := ParseSheetDate(rawDate)
	if err != nil {
		return nil, rowErr("invalid date " + rawDate)
	}
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return nil, rowErr("invalid amount " + rawAmount)
	}

	var parts []string
	for _, k := range remarkKeys {
		if v := r.Get(k); v != "" {
			parts = append(parts, v)
		}
	}
	return &ledgerInput{date: date, amount: amount, remark: optional(strings.Join(parts, " - "))}, nil
}

// ImportTransactions loads one indicator's ledger entries from .xlsx or .xls.
// kind is the indicator name ("investment", "payout", ...). Each row names
// the client by PAN; entries identical to an existing one are skipped.
func (s *Service) ImportTransactions(ctx context.Context, actor *uuid.UUID, kind, fileName string, data []byte) (*Report, error) {
	indicator, ok := domain.ParseIndicator(kind)
	if !ok {
		return nil, apperrors.Validation("Invalid transaction type",
			apperrors.FieldError{Field: "type", Message: "Use investment, payout, withdrawal or closure"})
	}
	kind = strings.ToLower(domain.IndicatorName(indicator))
	batchKind := KindTransactions + ":" + kind
	timer := metrics.NewTimer(metrics.ImportDuration.WithLabelValues(KindTransactions))

	rows, format, err := readRows(fileName, data, FormatXLSX, FormatXLS)
	if err != nil {
		return nil, err
	}

	l := s.newLedger(ctx)
	rep := newReport(batchKind, len(rows))
	for _, r := range rows {
		skipped, err := s.importLedgerRow(l, actor, indicator, kind, r)
		switch {
		case err != nil:
			rep.fail(r.Line, reason(err, batchKind, r.Line))
		case skipped:
			rep.SkippedCount++
		default:
			rep.SuccessCount++
		}
	}
	s.finish(ctx, rep, actor, fileName, format, timer)
	return rep, nil
}

func (s *Service) importLedgerRow(l *ledger, actor *uuid.UUID, indicator int, kind string, r Row) (bool, error) {
	pan := validation.NormalizePAN(r.Get("client_pan_no", "pan_no", "pan"))
	if pan == "" {
		return false, rowErr("missing required field: client_pan_no")
	}
	if !validation.IsValidPAN(pan) {
		return false, rowErr("invalid PAN " + pan)
	}
	in, err := parseLedgerFields(r,
		[]string{kind + "_date", "transaction_date", "date"},
		[]string{"amount", kind + "_amount"},
		[]string{kind + "_number", kind + "_details", "remark"},
	)
	if err != nil {
		return false, err
	}
	c, err := l.clientBy("pan_no", pan, l.byPAN)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, rowErr("no client with PAN " + pan)
	}
	return l.add(domain.Transaction{
		ClientID:        c.ClientID,
		IndicatorID:     indicator,
		TransactionDate: in.date,
		Amount:          in.amount,
		Remark:          in.remark,
		CreatedByID:     actor,
	})
}

// SyncTransactions inserts ledger records from the sync API. Each record
// names its client by client_code or PAN and its indicator by name or id;
// entries identical to an existing one are skipped.
func (s *Service) SyncTransactions(ctx context.Context, actor *uuid.UUID, records []map[string]interface{}) (*Report, error) {
	timer := metrics.NewTimer(metrics.ImportDuration.WithLabelValues(KindSyncTransactions))
	rows := RecordsToRows(records)
	l := s.newLedger(ctx)
	rep := newReport(KindSyncTransactions, len(rows))
	for _, r := range rows {
		skipped, err := s.syncLedgerRow(l, actor, r)
		switch {
		case err != nil:
			rep.fail(r.Line, reason(err, KindSyncTransactions, r.Line))
		case skipped:
			rep.SkippedCount++
		default:
			rep.SuccessCount++
		}
	}
	s.finish(ctx, rep, actor, "", FormatJSON, timer)
	return rep, nil
}

func (s *Service) syncLedgerRow(l *ledger, actor *uuid.UUID, r Row) (bool, error) {
	rawIndicator := r.Get("indicator", "indicator_id", "type")
	indicator, ok := domain.ParseIndicator(rawIndicator)
	if !ok {
		return false, rowErr("invalid indicator " + rawIndicator)
	}
	in, err := parseLedgerFields(r,
		[]string{"transaction_date", "date"},
		[]string{"amount"},
		[]string{"remark"},
	)
	if err != nil {
		return false, err
	}

	var c *domain.Client
	switch code, pan := r.Get("client_code", "code"), validation.NormalizePAN(r.Get("client_pan_no", "pan_no", "pan")); {
	case code != "":
		c, err = l.clientBy("code", code, l.byCode)
	case pan != "":
		c, err = l.clientBy("pan_no", pan, l.byPAN)
	default:
		return false, rowErr("missing required field: client_code")
	}
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, rowErr("unknown client")
	}
	return l.add(domain.Transaction{
		ClientID:        c.ClientID,
		IndicatorID:     indicator,
		TransactionDate: in.date,
		Amount:          in.amount,
		Remark:          in.remark,
		CreatedByID:     actor,
	})
}
