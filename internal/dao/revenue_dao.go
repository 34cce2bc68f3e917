package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/database"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/errs"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
)

const (
	insertLedgerEntryQuery = `INSERT INTO SY_REVENUE_LEDGER (ENTRY_ID, PERIOD_START, PERIOD_END,
		STORYTELLER_ID, SITE_ID, BILLABLE_UNITS, AMOUNT_CENTS, STATUS, COMPUTED_AT, PAID_AT)
		VALUES (:ENTRY_ID, :PERIOD_START, :PERIOD_END, :STORYTELLER_ID, :SITE_ID,
		:BILLABLE_UNITS, :AMOUNT_CENTS, :STATUS, :COMPUTED_AT, :PAID_AT)`

	deletePendingForPeriodQuery = `DELETE FROM SY_REVENUE_LEDGER
		WHERE PERIOD_START = ? AND PERIOD_END = ? AND STATUS = ?`

	selectPaidPairsForPeriodQuery = `SELECT * FROM SY_REVENUE_LEDGER
		WHERE PERIOD_START = ? AND PERIOD_END = ? AND STATUS = ?`

	selectLedgerByPeriodQuery = `SELECT * FROM SY_REVENUE_LEDGER
		WHERE PERIOD_START = ? AND PERIOD_END = ?
		ORDER BY STORYTELLER_ID, SITE_ID`

	selectLedgerEntryByIDQuery = `SELECT * FROM SY_REVENUE_LEDGER WHERE ENTRY_ID = ?`

	markEntryPaidQuery = `UPDATE SY_REVENUE_LEDGER SET STATUS = ?, PAID_AT = ?
		WHERE ENTRY_ID = ? AND STATUS = ?`

	listLedgerQuery = `SELECT * FROM SY_REVENUE_LEDGER
		ORDER BY PERIOD_START DESC, STORYTELLER_ID, SITE_ID LIMIT ? OFFSET ?`
)

// RevenueDAO handles database operations for the revenue ledger
type RevenueDAO struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewRevenueDAO creates a new RevenueDAO
func NewRevenueDAO(db *database.DB, logger *logrus.Logger) *RevenueDAO {
	return &RevenueDAO{db: db, logger: logger}
}

// PaidEntriesForPeriod returns the paid (immutable) entries of a period.
func (d *RevenueDAO) PaidEntriesForPeriod(ctx context.Context, periodStart, periodEnd int64) ([]models.RevenueLedgerEntry, error) {
	entries := []models.RevenueLedgerEntry{}
	err := d.db.SelectContext(ctx, &entries, selectPaidPairsForPeriodQuery,
		periodStart, periodEnd, models.LedgerStatusPaid)
	if err != nil {
		return nil, fmt.Errorf("failed to list paid ledger entries: %w", err)
	}
	return entries, nil
}

// ReplacePendingForPeriod deletes the period's pending entries and inserts the
// recomputed set in one transaction. Paid rows are never touched.
func (d *RevenueDAO) ReplacePendingForPeriod(ctx context.Context, periodStart, periodEnd int64, entries []models.RevenueLedgerEntry) error {
	return d.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		if _, err := tx.ExecContext(ctx, deletePendingForPeriodQuery,
			periodStart, periodEnd, models.LedgerStatusPending); err != nil {
			return fmt.Errorf("failed to clear pending ledger entries: %w", err)
		}

		for i := range entries {
			if _, err := tx.NamedExecContext(ctx, insertLedgerEntryQuery, &entries[i]); err != nil {
				return fmt.Errorf("failed to insert ledger entry: %w", err)
			}
		}

		d.logger.WithFields(logrus.Fields{
			"periodStart": periodStart,
			"periodEnd":   periodEnd,
			"entries":     len(entries),
		}).Debug("Pending ledger entries replaced")

		return nil
	})
}

// ListByPeriod returns all ledger entries for a period
func (d *RevenueDAO) ListByPeriod(ctx context.Context, periodStart, periodEnd int64) ([]models.RevenueLedgerEntry, error) {
	entries := []models.RevenueLedgerEntry{}
	err := d.db.SelectContext(ctx, &entries, selectLedgerByPeriodQuery, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}

// GetByID retrieves a single ledger entry
func (d *RevenueDAO) GetByID(ctx context.Context, entryID string) (*models.RevenueLedgerEntry, error) {
	var entry models.RevenueLedgerEntry
	err := d.db.GetContext(ctx, &entry, selectLedgerEntryByIDQuery, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ledger entry %s: %w", entryID, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return &entry, nil
}

// MarkPaid flips a pending entry to paid. Returns false without error when
// the entry exists but is already paid.
func (d *RevenueDAO) MarkPaid(ctx context.Context, entryID string, paidAt int64) (bool, error) {
	result, err := d.db.ExecContext(ctx, markEntryPaidQuery,
		models.LedgerStatusPaid, paidAt, entryID, models.LedgerStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to mark ledger entry paid: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		if _, err := d.GetByID(ctx, entryID); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// List returns ledger entries across periods, newest period first
func (d *RevenueDAO) List(ctx context.Context, limit, offset int) ([]models.RevenueLedgerEntry, error) {
	entries := []models.RevenueLedgerEntry{}
	err := d.db.SelectContext(ctx, &entries, listLedgerQuery, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}
