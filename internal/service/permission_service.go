package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/errs"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
)

// PermissionService answers the read-side question "may site X distribute
// story Y right now". It never mutates state; an approved record past its
// expiry is treated as not distributable even before the sweep flips it.
type PermissionService struct {
	consents ConsentStore
	sites    SiteStore
	logger   *logrus.Logger
	now      func() time.Time
}

// NewPermissionService creates a new PermissionService
func NewPermissionService(consents ConsentStore, sites SiteStore, logger *logrus.Logger) *PermissionService {
	return &PermissionService{
		consents: consents,
		sites:    sites,
		logger:   logger,
		now:      time.Now,
	}
}

// Evaluate computes the distribution decision from already loaded state.
// Elder-gated records stay closed until an approver is on record, even if
// the status was somehow forced to approved.
func (s *PermissionService) Evaluate(consent *models.ConsentRecord, site *models.SyndicationSite, now time.Time) models.PermissionDecision {
	denied := models.PermissionDecision{}

	if consent == nil || site == nil {
		return denied
	}
	if consent.Status != models.ConsentStatusApproved {
		return denied
	}
	if consent.IsExpiredAt(now) {
		return denied
	}
	if site.Status != models.SiteStatusActive {
		return denied
	}
	if consent.RequiresElderApproval && consent.ApprovedBy == nil {
		return denied
	}

	return models.PermissionDecision{
		Allowed:     true,
		Permissions: consent.Permissions(),
	}
}

// CanDistribute resolves the active consent for a (story, site) pair and
// evaluates it. A missing pair is an ordinary "not allowed", not an error.
func (s *PermissionService) CanDistribute(ctx context.Context, storyID, siteID string) (*models.PermissionDecision, error) {
	consent, err := s.consents.GetActiveByPair(ctx, storyID, siteID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return &models.PermissionDecision{}, nil
		}
		return nil, err
	}

	site, err := s.sites.GetByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return &models.PermissionDecision{}, nil
		}
		return nil, err
	}

	decision := s.Evaluate(consent, site, s.now())
	return &decision, nil
}
