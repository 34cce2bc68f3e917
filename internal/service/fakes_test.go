package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/errs"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
)

// In-memory stores mirroring the DAO contracts, including the versioned
// conditional update semantics, so lifecycle behaviour can be tested without
// a database.

type fakeConsentStore struct {
	mu       sync.Mutex
	consents map[string]*models.ConsentRecord
	audits   []models.ConsentStatusAudit
}

func newFakeConsentStore() *fakeConsentStore {
	return &fakeConsentStore{consents: map[string]*models.ConsentRecord{}}
}

func (f *fakeConsentStore) CreateWithAudit(_ context.Context, consent *models.ConsentRecord, audit *models.ConsentStatusAudit) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Mirrors the UK_SY_CONSENT_ACTIVE_PAIR unique key.
	for _, existing := range f.consents {
		if existing.StoryID == consent.StoryID && existing.SiteID == consent.SiteID &&
			!existing.Status.IsTerminal() {
			return fmt.Errorf("active consent exists for story %s site %s: %w",
				consent.StoryID, consent.SiteID, errs.ErrDuplicateConsent)
		}
	}

	cp := *consent
	f.consents[consent.ConsentID] = &cp
	f.audits = append(f.audits, *audit)
	return nil
}

func (f *fakeConsentStore) GetByID(_ context.Context, consentID string) (*models.ConsentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	consent, ok := f.consents[consentID]
	if !ok {
		return nil, fmt.Errorf("consent %s: %w", consentID, errs.ErrNotFound)
	}
	cp := *consent
	return &cp, nil
}

func (f *fakeConsentStore) GetActiveByPair(_ context.Context, storyID, siteID string) (*models.ConsentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, consent := range f.consents {
		if consent.StoryID == storyID && consent.SiteID == siteID && !consent.Status.IsTerminal() {
			cp := *consent
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("active consent: %w", errs.ErrNotFound)
}

func (f *fakeConsentStore) UpdateStatusVersioned(_ context.Context, update *models.ConsentStatusUpdate, audit *models.ConsentStatusAudit) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	consent, ok := f.consents[update.ConsentID]
	if !ok {
		return fmt.Errorf("consent %s: %w", update.ConsentID, errs.ErrNotFound)
	}
	if consent.Status != update.FromStatus || consent.Version != update.ExpectedVersion {
		return fmt.Errorf("consent %s version %d: %w",
			update.ConsentID, update.ExpectedVersion, errs.ErrConcurrencyConflict)
	}

	consent.Status = update.ToStatus
	consent.Version++
	consent.UpdatedTime = update.UpdatedTime
	if update.ApprovedBy != nil {
		consent.ApprovedBy = update.ApprovedBy
	}
	if update.ApprovedAt != nil {
		consent.ApprovedAt = update.ApprovedAt
	}
	if update.ExpiresAt != nil {
		consent.ExpiresAt = update.ExpiresAt
	}
	if update.RevokedAt != nil {
		consent.RevokedAt = update.RevokedAt
	}
	if update.RevocationReason != nil {
		consent.RevocationReason = update.RevocationReason
	}
	if update.RequiresElderApproval != nil {
		consent.RequiresElderApproval = *update.RequiresElderApproval
	}

	f.audits = append(f.audits, *audit)
	return nil
}

func (f *fakeConsentStore) ListExpiredApproved(_ context.Context, nowMillis int64, limit int) ([]models.ConsentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.ConsentRecord{}
	for _, consent := range f.consents {
		if consent.Status == models.ConsentStatusApproved &&
			consent.ExpiresAt != nil && *consent.ExpiresAt <= nowMillis {
			out = append(out, *consent)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeConsentStore) Search(_ context.Context, params *models.ConsentSearchParams) ([]models.ConsentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.ConsentRecord{}
	for _, consent := range f.consents {
		out = append(out, *consent)
	}
	return out, nil
}

func (f *fakeConsentStore) AuditsByConsentID(_ context.Context, consentID string) ([]models.ConsentStatusAudit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.ConsentStatusAudit{}
	for _, audit := range f.audits {
		if audit.ConsentID == consentID {
			out = append(out, audit)
		}
	}
	return out, nil
}

func (f *fakeConsentStore) auditCount(consentID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, audit := range f.audits {
		if audit.ConsentID == consentID {
			n++
		}
	}
	return n
}

type fakeSiteStore struct {
	mu    sync.Mutex
	sites map[string]*models.SyndicationSite
}

func newFakeSiteStore() *fakeSiteStore {
	return &fakeSiteStore{sites: map[string]*models.SyndicationSite{}}
}

func (f *fakeSiteStore) Create(_ context.Context, site *models.SyndicationSite) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := *site
	f.sites[site.SiteID] = &cp
	return nil
}

func (f *fakeSiteStore) GetByID(_ context.Context, siteID string) (*models.SyndicationSite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	site, ok := f.sites[siteID]
	if !ok {
		return nil, fmt.Errorf("site %s: %w", siteID, errs.ErrNotFound)
	}
	cp := *site
	return &cp, nil
}

func (f *fakeSiteStore) GetBySlug(_ context.Context, slug string) (*models.SyndicationSite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, site := range f.sites {
		if site.Slug == slug {
			cp := *site
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeSiteStore) List(_ context.Context, limit, offset int) ([]models.SyndicationSite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.SyndicationSite{}
	for _, site := range f.sites {
		out = append(out, *site)
	}
	return out, nil
}

func (f *fakeSiteStore) UpdateStatus(_ context.Context, siteID string, status models.SiteStatus, updatedTime int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	site, ok := f.sites[siteID]
	if !ok {
		return fmt.Errorf("site %s: %w", siteID, errs.ErrNotFound)
	}
	site.Status = status
	site.UpdatedTime = updatedTime
	return nil
}

type fakeStoryStore struct {
	mu      sync.Mutex
	stories map[string]*models.Story
}

func newFakeStoryStore() *fakeStoryStore {
	return &fakeStoryStore{stories: map[string]*models.Story{}}
}

func (f *fakeStoryStore) Create(_ context.Context, story *models.Story) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := *story
	f.stories[story.StoryID] = &cp
	return nil
}

func (f *fakeStoryStore) GetByID(_ context.Context, storyID string) (*models.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	story, ok := f.stories[storyID]
	if !ok {
		return nil, fmt.Errorf("story %s: %w", storyID, errs.ErrNotFound)
	}
	cp := *story
	return &cp, nil
}

func (f *fakeStoryStore) List(_ context.Context, limit, offset int) ([]models.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Story{}
	for _, story := range f.stories {
		out = append(out, *story)
	}
	return out, nil
}

type fakeTokenStore struct {
	mu     sync.Mutex
	byHash map[string]*models.EmbedToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{byHash: map[string]*models.EmbedToken{}}
}

func (f *fakeTokenStore) Replace(_ context.Context, token *models.EmbedToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for hash, existing := range f.byHash {
		if existing.ConsentID == token.ConsentID {
			delete(f.byHash, hash)
		}
	}
	cp := *token
	f.byHash[token.TokenHash] = &cp
	return nil
}

func (f *fakeTokenStore) GetByHash(_ context.Context, tokenHash string) (*models.EmbedToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	token, ok := f.byHash[tokenHash]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *token
	return &cp, nil
}

func (f *fakeTokenStore) DeleteByConsentID(_ context.Context, consentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for hash, token := range f.byHash {
		if token.ConsentID == consentID {
			delete(f.byHash, hash)
		}
	}
	return nil
}

func (f *fakeTokenStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byHash)
}

type fakeEngagementStore struct {
	mu     sync.Mutex
	events []models.EngagementEvent
	totals []models.PairActivity
}

func newFakeEngagementStore() *fakeEngagementStore {
	return &fakeEngagementStore{}
}

func (f *fakeEngagementStore) Append(_ context.Context, event *models.EngagementEvent) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.events {
		if existing.StoryID == event.StoryID && existing.SiteID == event.SiteID &&
			existing.EventType == event.EventType && existing.ClientNonce == event.ClientNonce {
			return false, nil
		}
	}
	f.events = append(f.events, *event)
	return true, nil
}

func (f *fakeEngagementStore) ExistsNonce(_ context.Context, storyID, siteID string, eventType models.EventType, nonce string, sinceMillis int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, event := range f.events {
		if event.StoryID == storyID && event.SiteID == siteID &&
			event.EventType == eventType && event.ClientNonce == nonce &&
			event.RecordedAt >= sinceMillis {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEngagementStore) PairTotalsInRange(_ context.Context, startMillis, endMillis int64) ([]models.PairActivity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.PairActivity{}, f.totals...), nil
}

func (f *fakeEngagementStore) eventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeRevenueStore struct {
	mu      sync.Mutex
	entries map[string]*models.RevenueLedgerEntry
}

func newFakeRevenueStore() *fakeRevenueStore {
	return &fakeRevenueStore{entries: map[string]*models.RevenueLedgerEntry{}}
}

func (f *fakeRevenueStore) PaidEntriesForPeriod(_ context.Context, periodStart, periodEnd int64) ([]models.RevenueLedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.RevenueLedgerEntry{}
	for _, entry := range f.entries {
		if entry.PeriodStart == periodStart && entry.PeriodEnd == periodEnd &&
			entry.Status == models.LedgerStatusPaid {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (f *fakeRevenueStore) ReplacePendingForPeriod(_ context.Context, periodStart, periodEnd int64, entries []models.RevenueLedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, entry := range f.entries {
		if entry.PeriodStart == periodStart && entry.PeriodEnd == periodEnd &&
			entry.Status == models.LedgerStatusPending {
			delete(f.entries, id)
		}
	}
	for i := range entries {
		cp := entries[i]
		f.entries[cp.EntryID] = &cp
	}
	return nil
}

func (f *fakeRevenueStore) ListByPeriod(_ context.Context, periodStart, periodEnd int64) ([]models.RevenueLedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.RevenueLedgerEntry{}
	for _, entry := range f.entries {
		if entry.PeriodStart == periodStart && entry.PeriodEnd == periodEnd {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (f *fakeRevenueStore) GetByID(_ context.Context, entryID string) (*models.RevenueLedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.entries[entryID]
	if !ok {
		return nil, fmt.Errorf("ledger entry %s: %w", entryID, errs.ErrNotFound)
	}
	cp := *entry
	return &cp, nil
}

func (f *fakeRevenueStore) MarkPaid(_ context.Context, entryID string, paidAt int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.entries[entryID]
	if !ok {
		return false, fmt.Errorf("ledger entry %s: %w", entryID, errs.ErrNotFound)
	}
	if entry.Status == models.LedgerStatusPaid {
		return false, nil
	}
	entry.Status = models.LedgerStatusPaid
	entry.PaidAt = &paidAt
	return true, nil
}

func (f *fakeRevenueStore) List(_ context.Context, limit, offset int) ([]models.RevenueLedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.RevenueLedgerEntry{}
	for _, entry := range f.entries {
		out = append(out, *entry)
	}
	return out, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []models.ConsentStatusEvent
}

func (f *fakeNotifier) NotifyConsentStatus(event models.ConsentStatusEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) eventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}
