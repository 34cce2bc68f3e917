package models

// LedgerStatus is the payment state of a revenue ledger entry.
type LedgerStatus string

const (
	LedgerStatusPending LedgerStatus = "pending"
	LedgerStatusPaid    LedgerStatus = "paid"
)

// RevenueLedgerEntry represents the SY_REVENUE_LEDGER table. Entries in `paid`
// status are immutable; corrections supersede still-pending rows only.
type RevenueLedgerEntry struct {
	EntryID       string       `db:"ENTRY_ID" json:"entryId"`
	PeriodStart   int64        `db:"PERIOD_START" json:"periodStart"`
	PeriodEnd     int64        `db:"PERIOD_END" json:"periodEnd"`
	StorytellerID string       `db:"STORYTELLER_ID" json:"storytellerId"`
	SiteID        string       `db:"SITE_ID" json:"siteId"`
	BillableUnits int64        `db:"BILLABLE_UNITS" json:"billableUnits"`
	AmountCents   int64        `db:"AMOUNT_CENTS" json:"amountCents"`
	Status        LedgerStatus `db:"STATUS" json:"status"`
	ComputedAt    int64        `db:"COMPUTED_AT" json:"computedAt"`
	PaidAt        *int64       `db:"PAID_AT" json:"paidAt,omitempty"`
}

// ComputePeriodRequest triggers a revenue computation run.
type ComputePeriodRequest struct {
	PeriodStart int64 `json:"periodStart" binding:"required"`
	PeriodEnd   int64 `json:"periodEnd" binding:"required"`
}

// PairFailure reports one (storyteller, site) pair whose computation failed
// without aborting the rest of the period.
type PairFailure struct {
	StorytellerID string `json:"storytellerId"`
	SiteID        string `json:"siteId"`
	Error         string `json:"error"`
}

// ComputePeriodResult summarizes one computation run.
type ComputePeriodResult struct {
	PeriodStart int64                `json:"periodStart"`
	PeriodEnd   int64                `json:"periodEnd"`
	Entries     []RevenueLedgerEntry `json:"entries"`
	SkippedPaid int                  `json:"skippedPaid"`
	FailedPairs []PairFailure        `json:"failedPairs,omitempty"`
	ComputedAt  int64                `json:"computedAt"`
}

// MarkPaidRequest marks pending ledger entries as paid.
type MarkPaidRequest struct {
	EntryIDs []string `json:"entryIds" binding:"required"`
}

// MarkPaidResult reports per-entry outcomes of a mark-paid call.
type MarkPaidResult struct {
	Paid    []string `json:"paid"`
	Skipped []string `json:"skipped,omitempty"`
}
