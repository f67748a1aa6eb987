package job

import (
	"context"
	"fmt"
	"time"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/model"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OnHoldCleanupName identifies the job in logs, the scheduler and the manual trigger route.
const OnHoldCleanupName = "on-hold-invoice-cleanup"

// Deleted holds the number of rows removed per table.
type Deleted struct {
	Bills       int64 `json:"bills"`
	Items       int64 `json:"items"`
	Adjustments int64 `json:"adjustments"`
	Payments    int64 `json:"payments"`
}

// Result describes one cleanup run.
type Result struct {
	InvoiceIDs []uint  `json:"invoice_ids"`
	Deleted    Deleted `json:"deleted"`
}

// OnHoldInvoiceCleanup hard-deletes invoices left "On Hold" for longer than
// MaxAge, together with their items, adjustments and payments.
type OnHoldInvoiceCleanup struct {
	db     *gorm.DB
	maxAge time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func NewOnHoldInvoiceCleanup(db *gorm.DB, maxAge time.Duration, log *zap.Logger) *OnHoldInvoiceCleanup {
	if log == nil {
		log = zap.NewNop()
	}
	return &OnHoldInvoiceCleanup{
		db:     db,
		maxAge: maxAge,
		log:    log.With(zap.String("job", OnHoldCleanupName)),
		now:    time.Now,
	}
}

// Run performs one cleanup inside a single transaction. Either every stale
// invoice and all of its rows are removed, or nothing is.
func (j *OnHoldInvoiceCleanup) Run(ctx context.Context) (Result, error) {
	defer prometheus.TrackDBOperation("cleanup_on_hold")(time.Now())

	startedAt := j.now().UTC()
	cutoff := startedAt.Add(-j.maxAge)
	result := Result{InvoiceIDs: []uint{}}

	err := j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Unscoped().
			Model(&model.SalesInvoiceBill{}).
			Where("status = ? AND created_at <= ?", model.InvoiceStatusOnHold, cutoff).
			Order("id").
			Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("select stale invoices: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}

		steps := []struct {
			table  string
			column string
			count  *int64
		}{
			{"sales_invoice_bills", "id", &result.Deleted.Bills},
			{"sales_invoice_items", "invoice_id", &result.Deleted.Items},
			{"sales_invoice_adjustments", "invoice_id", &result.Deleted.Adjustments},
			{"payments", "invoice_id", &result.Deleted.Payments},
		}
		for _, step := range steps {
			res := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s IN ?", step.table, step.column), ids)
			if res.Error != nil {
				return fmt.Errorf("delete from %s: %w", step.table, res.Error)
			}
			*step.count = res.RowsAffected
		}

		result.InvoiceIDs = ids
		return nil
	})

	prometheus.RecordCleanupRun(len(result.InvoiceIDs), err, startedAt)
	if err != nil {
		j.log.Error("On-hold invoice cleanup failed, transaction rolled back",
			zap.Time("cutoff", cutoff),
			zap.Error(err))
		return Result{InvoiceIDs: []uint{}}, err
	}

	if len(result.InvoiceIDs) == 0 {
		j.log.Info("No on-hold invoices to clean up", zap.Time("cutoff", cutoff))
		return result, nil
	}

	j.log.Info("Purged stale on-hold invoices",
		zap.Time("cutoff", cutoff),
		zap.Uints("invoice_ids", result.InvoiceIDs),
		zap.Int64("bills", result.Deleted.Bills),
		zap.Int64("items", result.Deleted.Items),
		zap.Int64("adjustments", result.Deleted.Adjustments),
		zap.Int64("payments", result.Deleted.Payments))
	return result, nil
}
