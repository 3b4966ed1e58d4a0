// Package imports loads clients and ledger entries from uploaded files and
// from the machine-to-machine sync API.
//
// Rows are processed one at a time and each row commits on its own, so a bad
// row is reported and the rest of the batch carries on. Every run is saved as
// an ImportBatch with its full report.
package imports

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"wealthdesk-backend/internal/application/emails"
	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/metrics"
	"wealthdesk-backend/internal/pkg/apperrors"
	"wealthdesk-backend/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Batch kinds recorded on ImportBatch.
const (
	KindClients          = "clients"
	KindTransactions     = "transactions"
	KindSyncClients      = "sync:clients"
	KindSyncTransactions = "sync:transactions"
)

// errEmailNotConfigured is reported per address when no sender is wired.
const errEmailNotConfigured = "email delivery not configured"

type Service struct {
	DB          *gorm.DB
	EmailSender emails.Sender // optional
	LoginURL    string

	// StoreTimeout bounds the store work of one row; MailTimeout one welcome email.
	StoreTimeout time.Duration
	MailTimeout  time.Duration
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, s.StoreTimeout)
}

// RowError is one rejected row.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// EmailResult is the welcome email outcome for one new login.
type EmailResult struct {
	Email string `json:"email"`
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// Report is returned by every import. A batch succeeded only when Errors is empty.
type Report struct {
	ImportBatchID uuid.UUID     `json:"importBatchId"`
	Kind          string        `json:"kind"`
	TotalRows     int           `json:"totalRows"`
	SuccessCount  int           `json:"successCount"`
	UpdatedCount  int           `json:"updatedCount,omitempty"`
	SkippedCount  int           `json:"skippedCount"`
	ErrorCount    int           `json:"errorCount"`
	Errors        []RowError    `json:"errors"`
	EmailResults  []EmailResult `json:"emailResults"`
}

// OK reports whether every row was accepted or skipped.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

func newReport(kind string, total int) *Report {
	return &Report{Kind: kind, TotalRows: total, Errors: []RowError{}, EmailResults: []EmailResult{}}
}

func (r *Report) fail(row int, reason string) {
	r.Errors = append(r.Errors, RowError{Row: row, Reason: reason})
	r.ErrorCount++
}

// rowError marks a failure caused by the row's content rather than the store.
type rowError struct{ reason string }

func (e rowError) Error() string { return e.reason }

func rowErr(reason string) error { return rowError{reason: reason} }

// reason renders err for the report. Store failures keep a generic text; the
// underlying error is logged.
func reason(err error, kind string, line int) string {
	var re rowError
	if errors.As(err, &re) {
		return re.reason
	}
	if ae, ok := apperrors.As(err); ok && ae.Kind != apperrors.KindDataUnavailable && ae.Kind != apperrors.KindInternal {
		if len(ae.Details) > 0 {
			return ae.Details[0].Message
		}
		return ae.Message
	}
	log.Error().Err(err).Str("kind", kind).Int("row", line).Msg("imports: row failed")
	return "could not save row"
}

// readRows parses data and rejects formats the caller does not accept.
func readRows(fileName string, data []byte, accepted ...string) ([]Row, string, error) {
	format := FormatFromName(fileName)
	ok := false
	for _, f := range accepted {
		if f == format {
			ok = true
		}
	}
	if !ok {
		return nil, format, apperrors.Validation("Unsupported file type",
			apperrors.FieldError{Field: "file", Message: "Accepted formats: ." + strings.Join(accepted, ", .")})
	}
	rows, err := Parse(data, format)
	if err != nil {
		return nil, format, apperrors.Validation("Could not read file",
			apperrors.FieldError{Field: "file", Message: err.Error()})
	}
	return rows, format, nil
}

// finish records metrics and persists the batch. The rows it describes are
// already committed, so the batch is written even if ctx was cancelled; a
// failure is logged.
func (s *Service) finish(ctx context.Context, rep *Report, actor *uuid.UUID, fileName, format string, timer *metrics.Timer) {
	timer.ObserveDuration()
	ctx, cancel := s.storeCtx(context.WithoutCancel(ctx))
	defer cancel()
	metricKind := rep.Kind
	if strings.HasPrefix(metricKind, KindTransactions+":") {
		metricKind = KindTransactions
	}
	metrics.ImportOutcome(metricKind, "success", rep.SuccessCount)
	metrics.ImportOutcome(metricKind, "updated", rep.UpdatedCount)
	metrics.ImportOutcome(metricKind, "skipped", rep.SkippedCount)
	metrics.ImportOutcome(metricKind, "error", rep.ErrorCount)

	errs, _ := json.Marshal(rep.Errors)
	mails, _ := json.Marshal(rep.EmailResults)
	batch := domain.ImportBatch{
		Kind:         rep.Kind,
		FileName:     fileName,
		Format:       format,
		TotalRows:    rep.TotalRows,
		SuccessCount: rep.SuccessCount + rep.UpdatedCount,
		SkippedCount: rep.SkippedCount,
		ErrorCount:   rep.ErrorCount,
		Errors:       datatypes.JSON(errs),
		EmailResults: datatypes.JSON(mails),
		CreatedByID:  actor,
	}
	if err := s.DB.WithContext(ctx).Create(&batch).Error; err != nil {
		log.Error().Err(err).Str("kind", rep.Kind).Msg("imports: could not record batch")
		return
	}
	rep.ImportBatchID = batch.ImportBatchID

	lg := logger.WithComponent("imports")
	lg.Info().
		Str("kind", rep.Kind).
		Str("batch_id", batch.ImportBatchID.String()).
		Int("total", rep.TotalRows).
		Int("success", rep.SuccessCount).
		Int("updated", rep.UpdatedCount).
		Int("skipped", rep.SkippedCount).
		Int("errors", rep.ErrorCount).
		Msg("batch finished")
}

// ListBatches returns the most recent import runs.
func (s *Service) ListBatches(ctx context.Context, limit int) ([]domain.ImportBatch, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []domain.ImportBatch
	if err := s.DB.WithContext(ctx).Order("created_date DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, apperrors.Store(err, "Import batch")
	}
	return out, nil
}
