package service

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/errs"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
)

const (
	periodStart = int64(1_700_000_000_000)
	periodEnd   = int64(1_700_600_000_000)
)

type revenueFixture struct {
	ledger *fakeRevenueStore
	events *fakeEngagementStore
	sites  *fakeSiteStore
	svc    *RevenueService
}

func newRevenueFixture(t *testing.T) *revenueFixture {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	f := &revenueFixture{
		ledger: newFakeRevenueStore(),
		events: newFakeEngagementStore(),
		sites:  newFakeSiteStore(),
	}
	f.svc = NewRevenueService(f.ledger, f.events, f.sites, logger, 5)
	f.svc.now = func() time.Time { return testTime }

	require.NoError(t, f.sites.Create(context.Background(), &models.SyndicationSite{
		SiteID: "SITE-1", Slug: "partner", Name: "Partner",
		Status: models.SiteStatusActive, RevenueSharePct: 70,
	}))

	return f
}

func TestComputePeriod_WeightedUnitsAndIntegerCents(t *testing.T) {
	f := newRevenueFixture(t)
	f.events.totals = []models.PairActivity{
		{StorytellerID: "TELLER-1", SiteID: "SITE-1", Views: 10, Clicks: 4, Shares: 2},
	}

	result, err := f.svc.ComputePeriod(context.Background(), &models.ComputePeriodRequest{
		PeriodStart: periodStart, PeriodEnd: periodEnd,
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)

	entry := result.Entries[0]
	// 10*1 + 4*2 + 2*3 = 24 units; 24 * 5 cents * 70% = 84 cents
	assert.Equal(t, int64(24), entry.BillableUnits)
	assert.Equal(t, int64(84), entry.AmountCents)
	assert.Equal(t, models.LedgerStatusPending, entry.Status)
}

func TestComputePeriod_RerunIsDeterministic(t *testing.T) {
	f := newRevenueFixture(t)
	require.NoError(t, f.sites.Create(context.Background(), &models.SyndicationSite{
		SiteID: "SITE-2", Slug: "other", Name: "Other",
		Status: models.SiteStatusActive, RevenueSharePct: 50,
	}))
	f.events.totals = []models.PairActivity{
		{StorytellerID: "TELLER-2", SiteID: "SITE-2", Views: 3, Clicks: 0, Shares: 1},
		{StorytellerID: "TELLER-1", SiteID: "SITE-1", Views: 10, Clicks: 4, Shares: 2},
	}
	req := &models.ComputePeriodRequest{PeriodStart: periodStart, PeriodEnd: periodEnd}

	first, err := f.svc.ComputePeriod(context.Background(), req)
	require.NoError(t, err)
	second, err := f.svc.ComputePeriod(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, second.Entries, len(first.Entries))
	for i := range first.Entries {
		assert.Equal(t, first.Entries[i].StorytellerID, second.Entries[i].StorytellerID)
		assert.Equal(t, first.Entries[i].SiteID, second.Entries[i].SiteID)
		assert.Equal(t, first.Entries[i].BillableUnits, second.Entries[i].BillableUnits)
		assert.Equal(t, first.Entries[i].AmountCents, second.Entries[i].AmountCents)
	}

	// Pending rows were replaced, not accumulated.
	stored, err := f.ledger.ListByPeriod(context.Background(), periodStart, periodEnd)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestComputePeriod_PaidEntriesUntouched(t *testing.T) {
	f := newRevenueFixture(t)
	f.events.totals = []models.PairActivity{
		{StorytellerID: "TELLER-1", SiteID: "SITE-1", Views: 10, Clicks: 4, Shares: 2},
	}
	req := &models.ComputePeriodRequest{PeriodStart: periodStart, PeriodEnd: periodEnd}

	first, err := f.svc.ComputePeriod(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first.Entries, 1)
	entryID := first.Entries[0].EntryID

	paidResult, err := f.svc.MarkPaid(context.Background(), &models.MarkPaidRequest{
		EntryIDs: []string{entryID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{entryID}, paidResult.Paid)

	// Engagement keeps growing, but the paid pair is never recomputed.
	f.events.totals[0].Views = 100
	second, err := f.svc.ComputePeriod(context.Background(), req)
	require.NoError(t, err)

	assert.Empty(t, second.Entries)
	assert.Equal(t, 1, second.SkippedPaid)

	paid, err := f.ledger.GetByID(context.Background(), entryID)
	require.NoError(t, err)
	assert.Equal(t, models.LedgerStatusPaid, paid.Status)
	assert.Equal(t, int64(24), paid.BillableUnits)
	require.NotNil(t, paid.PaidAt)
}

func TestComputePeriod_PairFailureDoesNotAbortRun(t *testing.T) {
	f := newRevenueFixture(t)
	f.events.totals = []models.PairActivity{
		{StorytellerID: "TELLER-1", SiteID: "SITE-1", Views: 1},
		{StorytellerID: "TELLER-2", SiteID: "SITE-unknown", Views: 5},
	}

	result, err := f.svc.ComputePeriod(context.Background(), &models.ComputePeriodRequest{
		PeriodStart: periodStart, PeriodEnd: periodEnd,
	})
	require.NoError(t, err)

	assert.Len(t, result.Entries, 1)
	require.Len(t, result.FailedPairs, 1)
	assert.Equal(t, "SITE-unknown", result.FailedPairs[0].SiteID)
}

func TestComputePeriod_InvalidRange(t *testing.T) {
	f := newRevenueFixture(t)

	_, err := f.svc.ComputePeriod(context.Background(), &models.ComputePeriodRequest{
		PeriodStart: periodEnd, PeriodEnd: periodStart,
	})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestMarkPaid_AlreadyPaidSkipped(t *testing.T) {
	f := newRevenueFixture(t)
	f.events.totals = []models.PairActivity{
		{StorytellerID: "TELLER-1", SiteID: "SITE-1", Views: 1},
	}

	result, err := f.svc.ComputePeriod(context.Background(), &models.ComputePeriodRequest{
		PeriodStart: periodStart, PeriodEnd: periodEnd,
	})
	require.NoError(t, err)
	entryID := result.Entries[0].EntryID

	first, err := f.svc.MarkPaid(context.Background(), &models.MarkPaidRequest{EntryIDs: []string{entryID}})
	require.NoError(t, err)
	assert.Equal(t, []string{entryID}, first.Paid)

	second, err := f.svc.MarkPaid(context.Background(), &models.MarkPaidRequest{EntryIDs: []string{entryID}})
	require.NoError(t, err)
	assert.Empty(t, second.Paid)
	assert.Equal(t, []string{entryID}, second.Skipped)
}

func TestMarkPaid_UnknownEntry(t *testing.T) {
	f := newRevenueFixture(t)

	_, err := f.svc.MarkPaid(context.Background(), &models.MarkPaidRequest{
		EntryIDs: []string{"LEDGER-missing"},
	})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
