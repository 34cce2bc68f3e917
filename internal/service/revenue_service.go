package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/errs"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
	"github.com/Acurioustractor/empathy-ledger-syndication/pkg/utils"
)

// Billable unit weights per event type.
const (
	weightView  = 1
	weightClick = 2
	weightShare = 3
)

// RevenueService computes per-period revenue attribution. All arithmetic is
// in integer cents so recomputing an unchanged period yields byte-identical
// entries. Paid entries are immutable; recomputation only replaces rows still
// pending.
type RevenueService struct {
	ledger       RevenueStore
	events       EngagementStore
	sites        SiteStore
	logger       *logrus.Logger
	perUnitCents int64
	now          func() time.Time
}

// NewRevenueService creates a new RevenueService
func NewRevenueService(ledger RevenueStore, events EngagementStore, sites SiteStore,
	logger *logrus.Logger, perUnitCents int64) *RevenueService {
	if perUnitCents <= 0 {
		perUnitCents = 5
	}
	return &RevenueService{
		ledger:       ledger,
		events:       events,
		sites:        sites,
		logger:       logger,
		perUnitCents: perUnitCents,
		now:          time.Now,
	}
}

// ComputePeriod aggregates engagement for [periodStart, periodEnd) into
// ledger entries per (storyteller, site) pair. A failure computing one pair
// is reported but does not abort the rest of the run.
func (s *RevenueService) ComputePeriod(ctx context.Context, req *models.ComputePeriodRequest) (*models.ComputePeriodResult, error) {
	if req.PeriodEnd <= req.PeriodStart {
		return nil, fmt.Errorf("period end %d must be after period start %d: %w",
			req.PeriodEnd, req.PeriodStart, errs.ErrInvalidInput)
	}

	totals, err := s.events.PairTotalsInRange(ctx, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}

	paid, err := s.ledger.PaidEntriesForPeriod(ctx, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}
	paidPairs := make(map[string]struct{}, len(paid))
	for _, entry := range paid {
		paidPairs[entry.StorytellerID+"\x00"+entry.SiteID] = struct{}{}
	}

	computedAt := utils.TimeToMillis(s.now())
	result := &models.ComputePeriodResult{
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Entries:     []models.RevenueLedgerEntry{},
		ComputedAt:  computedAt,
	}

	for _, pair := range totals {
		if _, done := paidPairs[pair.StorytellerID+"\x00"+pair.SiteID]; done {
			result.SkippedPaid++
			continue
		}

		site, err := s.sites.GetByID(ctx, pair.SiteID)
		if err != nil {
			result.FailedPairs = append(result.FailedPairs, models.PairFailure{
				StorytellerID: pair.StorytellerID,
				SiteID:        pair.SiteID,
				Error:         err.Error(),
			})
			continue
		}

		units := pair.Views*weightView + pair.Clicks*weightClick + pair.Shares*weightShare
		amount := units * s.perUnitCents * int64(site.RevenueSharePct) / 100

		result.Entries = append(result.Entries, models.RevenueLedgerEntry{
			EntryID:       utils.GenerateLedgerEntryID(),
			PeriodStart:   req.PeriodStart,
			PeriodEnd:     req.PeriodEnd,
			StorytellerID: pair.StorytellerID,
			SiteID:        pair.SiteID,
			BillableUnits: units,
			AmountCents:   amount,
			Status:        models.LedgerStatusPending,
			ComputedAt:    computedAt,
		})
	}

	sort.Slice(result.Entries, func(i, j int) bool {
		if result.Entries[i].StorytellerID != result.Entries[j].StorytellerID {
			return result.Entries[i].StorytellerID < result.Entries[j].StorytellerID
		}
		return result.Entries[i].SiteID < result.Entries[j].SiteID
	})

	if err := s.ledger.ReplacePendingForPeriod(ctx, req.PeriodStart, req.PeriodEnd, result.Entries); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"periodStart": req.PeriodStart,
		"periodEnd":   req.PeriodEnd,
		"entries":     len(result.Entries),
		"skippedPaid": result.SkippedPaid,
		"failed":      len(result.FailedPairs),
	}).Info("Revenue period computed")

	return result, nil
}

// MarkPaid flips pending entries to paid. Entries already paid are reported
// as skipped rather than failing the batch; an unknown ID fails the call.
func (s *RevenueService) MarkPaid(ctx context.Context, req *models.MarkPaidRequest) (*models.MarkPaidResult, error) {
	paidAt := utils.TimeToMillis(s.now())
	result := &models.MarkPaidResult{Paid: []string{}}

	for _, entryID := range req.EntryIDs {
		flipped, err := s.ledger.MarkPaid(ctx, entryID, paidAt)
		if err != nil {
			return nil, err
		}
		if flipped {
			result.Paid = append(result.Paid, entryID)
		} else {
			result.Skipped = append(result.Skipped, entryID)
		}
	}

	return result, nil
}

// ListByPeriod returns all ledger entries for a period
func (s *RevenueService) ListByPeriod(ctx context.Context, periodStart, periodEnd int64) ([]models.RevenueLedgerEntry, error) {
	return s.ledger.ListByPeriod(ctx, periodStart, periodEnd)
}

// List returns ledger entries across periods
func (s *RevenueService) List(ctx context.Context, limit, offset int) ([]models.RevenueLedgerEntry, error) {
	return s.ledger.List(ctx, limit, offset)
}
