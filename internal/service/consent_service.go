package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/errs"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
	"github.com/Acurioustractor/empathy-ledger-syndication/pkg/utils"
)

// ConsentService implements the consent lifecycle. All status mutations go
// through versioned conditional updates; a lost race is retried a bounded
// number of times against the reloaded record before surfacing
// errs.ErrConcurrencyConflict.
type ConsentService struct {
	consents        ConsentStore
	sites           SiteStore
	stories         StoryStore
	tokens          TokenStore
	notifier        Notifier
	logger          *logrus.Logger
	conflictRetries int
	sweepBatchSize  int
	now             func() time.Time
}

// NewConsentService creates a new ConsentService
func NewConsentService(consents ConsentStore, sites SiteStore, stories StoryStore, tokens TokenStore,
	notifier Notifier, logger *logrus.Logger, conflictRetries, sweepBatchSize int) *ConsentService {
	if conflictRetries <= 0 {
		conflictRetries = 3
	}
	if sweepBatchSize <= 0 {
		sweepBatchSize = 100
	}
	return &ConsentService{
		consents:        consents,
		sites:           sites,
		stories:         stories,
		tokens:          tokens,
		notifier:        notifier,
		logger:          logger,
		conflictRetries: conflictRetries,
		sweepBatchSize:  sweepBatchSize,
		now:             time.Now,
	}
}

func (s *ConsentService) nowMillis() int64 {
	return utils.TimeToMillis(s.now())
}

// Create requests consent for distributing a story to a site. At most one
// non-terminal record may exist per (story, site) pair. Records that demand
// elder approval start in requires_review instead of pending.
func (s *ConsentService) Create(ctx context.Context, req *models.ConsentCreateRequest) (*models.ConsentRecord, error) {
	if _, err := s.stories.GetByID(ctx, req.StoryID); err != nil {
		return nil, err
	}
	if _, err := s.sites.GetByID(ctx, req.SiteID); err != nil {
		return nil, err
	}

	if existing, err := s.consents.GetActiveByPair(ctx, req.StoryID, req.SiteID); err == nil {
		return nil, fmt.Errorf("consent %s already active for story %s site %s: %w",
			existing.ConsentID, req.StoryID, req.SiteID, errs.ErrDuplicateConsent)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	now := s.nowMillis()
	status := models.ConsentStatusPending
	if req.RequiresElderApproval {
		status = models.ConsentStatusRequiresReview
	}

	consent := &models.ConsentRecord{
		ConsentID:             utils.GenerateConsentID(),
		StoryID:               req.StoryID,
		SiteID:                req.SiteID,
		Status:                status,
		AllowFullResolution:   req.Permissions.AllowFullResolution,
		AllowDownload:         req.Permissions.AllowDownload,
		AllowEmbedding:        req.Permissions.AllowEmbedding,
		RequiresElderApproval: req.RequiresElderApproval,
		Version:               1,
		CreatedTime:           now,
		UpdatedTime:           now,
	}
	audit := &models.ConsentStatusAudit{
		AuditID:       utils.GenerateAuditID(),
		ConsentID:     consent.ConsentID,
		CurrentStatus: status,
		ActionTime:    now,
	}

	if err := s.consents.CreateWithAudit(ctx, consent, audit); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"consentId": consent.ConsentID,
		"storyId":   consent.StoryID,
		"siteId":    consent.SiteID,
		"status":    consent.Status,
	}).Info("Consent requested")

	return consent, nil
}

// Get returns a consent record by ID
func (s *ConsentService) Get(ctx context.Context, consentID string) (*models.ConsentRecord, error) {
	return s.consents.GetByID(ctx, consentID)
}

// Search returns consent records matching the given filters
func (s *ConsentService) Search(ctx context.Context, params *models.ConsentSearchParams) ([]models.ConsentRecord, error) {
	if params.Limit <= 0 {
		params.Limit = 25
	}
	return s.consents.Search(ctx, params)
}

// Audits returns the full status history of a consent record
func (s *ConsentService) Audits(ctx context.Context, consentID string) ([]models.ConsentStatusAudit, error) {
	if _, err := s.consents.GetByID(ctx, consentID); err != nil {
		return nil, err
	}
	return s.consents.AuditsByConsentID(ctx, consentID)
}

// Approve transitions a pending or requires_review record to approved. When
// the site defines a retention duration the record receives a matching
// expiry; distribution stops automatically once it passes.
func (s *ConsentService) Approve(ctx context.Context, consentID string, req *models.ConsentActionRequest) (*models.ConsentRecord, error) {
	updated, err := s.applyTransition(ctx, consentID, models.ConsentStatusApproved, req,
		func(current *models.ConsentRecord, update *models.ConsentStatusUpdate) error {
			site, err := s.sites.GetByID(ctx, current.SiteID)
			if err != nil {
				return err
			}
			update.ApprovedBy = &req.ActionBy
			approvedAt := update.UpdatedTime
			update.ApprovedAt = &approvedAt
			if site.RetentionDurationMS != nil {
				expiresAt := update.UpdatedTime + *site.RetentionDurationMS
				update.ExpiresAt = &expiresAt
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	s.notify(updated, req.ActionBy, req.Reason)
	return updated, nil
}

// Deny transitions a pending or requires_review record to denied.
func (s *ConsentService) Deny(ctx context.Context, consentID string, req *models.ConsentActionRequest) (*models.ConsentRecord, error) {
	updated, err := s.applyTransition(ctx, consentID, models.ConsentStatusDenied, req, nil)
	if err != nil {
		return nil, err
	}

	s.notify(updated, req.ActionBy, req.Reason)
	return updated, nil
}

// FlagForReview escalates a pending record to requires_review, e.g. when a
// cultural sensitivity check demands an elder's decision.
func (s *ConsentService) FlagForReview(ctx context.Context, consentID string, req *models.ConsentActionRequest) (*models.ConsentRecord, error) {
	elder := true
	return s.applyTransition(ctx, consentID, models.ConsentStatusRequiresReview, req,
		func(current *models.ConsentRecord, update *models.ConsentStatusUpdate) error {
			update.RequiresElderApproval = &elder
			return nil
		})
}

// Revoke withdraws an approved consent. Revoking an already revoked record
// is a no-op returning the current state; no second audit row is written.
// The live embed token, if any, dies with the consent.
func (s *ConsentService) Revoke(ctx context.Context, consentID string, req *models.ConsentActionRequest) (*models.ConsentRecord, error) {
	current, err := s.consents.GetByID(ctx, consentID)
	if err != nil {
		return nil, err
	}
	if current.Status == models.ConsentStatusRevoked {
		return current, nil
	}

	updated, err := s.applyTransition(ctx, consentID, models.ConsentStatusRevoked, req,
		func(current *models.ConsentRecord, update *models.ConsentStatusUpdate) error {
			revokedAt := update.UpdatedTime
			update.RevokedAt = &revokedAt
			if req.Reason != "" {
				update.RevocationReason = &req.Reason
			}
			return nil
		})
	if err != nil {
		// A concurrent revoke winning the race is still success for this caller.
		if errors.Is(err, errs.ErrInvalidStateTransition) || errors.Is(err, errs.ErrConcurrencyConflict) {
			if latest, gerr := s.consents.GetByID(ctx, consentID); gerr == nil &&
				latest.Status == models.ConsentStatusRevoked {
				return latest, nil
			}
		}
		return nil, err
	}

	if err := s.tokens.DeleteByConsentID(ctx, consentID); err != nil {
		s.logger.WithError(err).WithField("consentId", consentID).
			Error("Failed to delete embed token after revocation")
	}

	s.notify(updated, req.ActionBy, req.Reason)
	return updated, nil
}

// ExpireSweep transitions approved records past their expiry to expired and
// removes their live tokens. Returns the number of records expired.
func (s *ConsentService) ExpireSweep(ctx context.Context) (int, error) {
	now := s.nowMillis()
	candidates, err := s.consents.ListExpiredApproved(ctx, now, s.sweepBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range candidates {
		consent := &candidates[i]
		_, err := s.applyTransition(ctx, consent.ConsentID, models.ConsentStatusExpired, nil, nil)
		if err != nil {
			// Someone else revoked or expired it first; nothing left to do here.
			if errors.Is(err, errs.ErrInvalidStateTransition) || errors.Is(err, errs.ErrConcurrencyConflict) {
				continue
			}
			return expired, err
		}

		if err := s.tokens.DeleteByConsentID(ctx, consent.ConsentID); err != nil {
			s.logger.WithError(err).WithField("consentId", consent.ConsentID).
				Error("Failed to delete embed token after expiry")
		}

		s.notifier.NotifyConsentStatus(models.ConsentStatusEvent{
			ConsentID: consent.ConsentID,
			StoryID:   consent.StoryID,
			SiteID:    consent.SiteID,
			NewStatus: models.ConsentStatusExpired,
			EventTime: s.nowMillis(),
		})
		expired++
	}

	if expired > 0 {
		s.logger.WithField("count", expired).Info("Expired consents swept")
	}
	return expired, nil
}

// applyTransition loads the record, validates the lifecycle edge, and applies
// a versioned conditional update plus audit row. On a version race it reloads
// and retries up to conflictRetries times.
func (s *ConsentService) applyTransition(ctx context.Context, consentID string, to models.ConsentStatus,
	req *models.ConsentActionRequest,
	build func(current *models.ConsentRecord, update *models.ConsentStatusUpdate) error) (*models.ConsentRecord, error) {

	var lastErr error
	for attempt := 0; attempt <= s.conflictRetries; attempt++ {
		current, err := s.consents.GetByID(ctx, consentID)
		if err != nil {
			return nil, err
		}

		if !models.CanTransition(current.Status, to) {
			// When a lost version race led here, the edge was legal at the
			// caller's read and a concurrent writer got there first. That is a
			// conflict, not a request for an illegal transition.
			if lastErr != nil {
				return nil, fmt.Errorf("consent %s: superseded by concurrent update, now %s: %w",
					consentID, current.Status, errs.ErrConcurrencyConflict)
			}
			return nil, fmt.Errorf("consent %s: %s to %s: %w",
				consentID, current.Status, to, errs.ErrInvalidStateTransition)
		}

		now := s.nowMillis()
		update := &models.ConsentStatusUpdate{
			ConsentID:       consentID,
			FromStatus:      current.Status,
			ToStatus:        to,
			ExpectedVersion: current.Version,
			UpdatedTime:     now,
		}
		if build != nil {
			if err := build(current, update); err != nil {
				return nil, err
			}
		}

		audit := &models.ConsentStatusAudit{
			AuditID:        utils.GenerateAuditID(),
			ConsentID:      consentID,
			PreviousStatus: current.Status,
			CurrentStatus:  to,
			ActionTime:     now,
		}
		if req != nil {
			if req.ActionBy != "" {
				actionBy := req.ActionBy
				audit.ActionBy = &actionBy
			}
			if req.Reason != "" {
				reason := req.Reason
				audit.Reason = &reason
			}
		}

		err = s.consents.UpdateStatusVersioned(ctx, update, audit)
		if err == nil {
			return s.consents.GetByID(ctx, consentID)
		}
		if !errors.Is(err, errs.ErrConcurrencyConflict) {
			return nil, err
		}
		lastErr = err

		s.logger.WithFields(logrus.Fields{
			"consentId": consentID,
			"attempt":   attempt + 1,
		}).Debug("Consent update lost version race, retrying")
	}

	return nil, lastErr
}

func (s *ConsentService) notify(consent *models.ConsentRecord, actorID, reason string) {
	s.notifier.NotifyConsentStatus(models.ConsentStatusEvent{
		ConsentID: consent.ConsentID,
		StoryID:   consent.StoryID,
		SiteID:    consent.SiteID,
		NewStatus: consent.Status,
		ActorID:   actorID,
		Reason:    reason,
		EventTime: s.nowMillis(),
	})
}
