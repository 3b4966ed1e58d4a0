package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ImportBatch records one bulk import or sync run and its report.
type ImportBatch struct {
	ImportBatchID uuid.UUID      `gorm:"column:import_batch_id;type:uuid;primaryKey" json:"importBatchId"`
	Kind          string         `gorm:"column:kind;type:varchar(40);not null;index" json:"kind"`
	FileName      string         `gorm:"column:file_name" json:"fileName"`
	Format        string         `gorm:"column:format;type:varchar(8)" json:"format"`
	TotalRows     int            `gorm:"column:total_rows" json:"totalRows"`
	SuccessCount  int            `gorm:"column:success_count" json:"successCount"`
	SkippedCount  int            `gorm:"column:skipped_count" json:"skippedCount"`
	ErrorCount    int            `gorm:"column:error_count" json:"errorCount"`
	Errors        datatypes.JSON `gorm:"column:errors" json:"errors"`
	EmailResults  datatypes.JSON `gorm:"column:email_results" json:"emailResults"`
	CreatedByID   *uuid.UUID     `gorm:"column:created_by_id;type:uuid" json:"createdById"`
	CreatedDate   time.Time      `gorm:"column:created_date;autoCreateTime" json:"createdDate"`
}

func (ImportBatch) TableName() string {
	return "import_batches"
}

func (b *ImportBatch) BeforeCreate(tx *gorm.DB) error {
	if b.ImportBatchID == uuid.Nil {
		b.ImportBatchID = uuid.New()
	}
	return nil
}
