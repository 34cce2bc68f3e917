package service

import (
	"context"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
)

// ConsentStore persists consent records and their status audit trail.
type ConsentStore interface {
	CreateWithAudit(ctx context.Context, consent *models.ConsentRecord, audit *models.ConsentStatusAudit) error
	GetByID(ctx context.Context, consentID string) (*models.ConsentRecord, error)
	GetActiveByPair(ctx context.Context, storyID, siteID string) (*models.ConsentRecord, error)
	UpdateStatusVersioned(ctx context.Context, update *models.ConsentStatusUpdate, audit *models.ConsentStatusAudit) error
	ListExpiredApproved(ctx context.Context, nowMillis int64, limit int) ([]models.ConsentRecord, error)
	Search(ctx context.Context, params *models.ConsentSearchParams) ([]models.ConsentRecord, error)
	AuditsByConsentID(ctx context.Context, consentID string) ([]models.ConsentStatusAudit, error)
}

// SiteStore persists syndication partner sites.
type SiteStore interface {
	Create(ctx context.Context, site *models.SyndicationSite) error
	GetByID(ctx context.Context, siteID string) (*models.SyndicationSite, error)
	GetBySlug(ctx context.Context, slug string) (*models.SyndicationSite, error)
	List(ctx context.Context, limit, offset int) ([]models.SyndicationSite, error)
	UpdateStatus(ctx context.Context, siteID string, status models.SiteStatus, updatedTime int64) error
}

// StoryStore persists the story registry.
type StoryStore interface {
	Create(ctx context.Context, story *models.Story) error
	GetByID(ctx context.Context, storyID string) (*models.Story, error)
	List(ctx context.Context, limit, offset int) ([]models.Story, error)
}

// TokenStore persists hashed embed tokens.
type TokenStore interface {
	Replace(ctx context.Context, token *models.EmbedToken) error
	GetByHash(ctx context.Context, tokenHash string) (*models.EmbedToken, error)
	DeleteByConsentID(ctx context.Context, consentID string) error
}

// EngagementStore persists the append-only engagement log.
type EngagementStore interface {
	Append(ctx context.Context, event *models.EngagementEvent) (bool, error)
	ExistsNonce(ctx context.Context, storyID, siteID string, eventType models.EventType, nonce string, sinceMillis int64) (bool, error)
	PairTotalsInRange(ctx context.Context, startMillis, endMillis int64) ([]models.PairActivity, error)
}

// RevenueStore persists the revenue ledger.
type RevenueStore interface {
	PaidEntriesForPeriod(ctx context.Context, periodStart, periodEnd int64) ([]models.RevenueLedgerEntry, error)
	ReplacePendingForPeriod(ctx context.Context, periodStart, periodEnd int64, entries []models.RevenueLedgerEntry) error
	ListByPeriod(ctx context.Context, periodStart, periodEnd int64) ([]models.RevenueLedgerEntry, error)
	GetByID(ctx context.Context, entryID string) (*models.RevenueLedgerEntry, error)
	MarkPaid(ctx context.Context, entryID string, paidAt int64) (bool, error)
	List(ctx context.Context, limit, offset int) ([]models.RevenueLedgerEntry, error)
}

// Notifier delivers consent status events to syndication partners. Delivery
// is best effort and must never fail or block the calling operation.
type Notifier interface {
	NotifyConsentStatus(event models.ConsentStatusEvent)
}
