package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/errs"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
	"github.com/Acurioustractor/empathy-ledger-syndication/pkg/utils"
)

// SiteService manages the syndication partner registry.
type SiteService struct {
	sites  SiteStore
	logger *logrus.Logger
	now    func() time.Time
}

// NewSiteService creates a new SiteService
func NewSiteService(sites SiteStore, logger *logrus.Logger) *SiteService {
	return &SiteService{sites: sites, logger: logger, now: time.Now}
}

// Create registers a new partner site
func (s *SiteService) Create(ctx context.Context, req *models.SiteCreateRequest) (*models.SyndicationSite, error) {
	if req.RevenueSharePct < 0 || req.RevenueSharePct > 100 {
		return nil, fmt.Errorf("revenue share must be between 0 and 100, got %d: %w",
			req.RevenueSharePct, errs.ErrInvalidInput)
	}

	now := utils.TimeToMillis(s.now())
	site := &models.SyndicationSite{
		SiteID:              utils.GenerateSiteID(),
		Slug:                req.Slug,
		Name:                req.Name,
		Status:              models.SiteStatusActive,
		AllowedDomains:      req.AllowedDomains,
		RevenueSharePct:     req.RevenueSharePct,
		RetentionDurationMS: req.RetentionDurationMS,
		CreatedTime:         now,
		UpdatedTime:         now,
	}

	if err := s.sites.Create(ctx, site); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"siteId": site.SiteID,
		"slug":   site.Slug,
	}).Info("Syndication site registered")

	return site, nil
}

// Get returns a site by ID
func (s *SiteService) Get(ctx context.Context, siteID string) (*models.SyndicationSite, error) {
	return s.sites.GetByID(ctx, siteID)
}

// List returns registered sites
func (s *SiteService) List(ctx context.Context, limit, offset int) ([]models.SyndicationSite, error) {
	return s.sites.List(ctx, limit, offset)
}

// Suspend takes a site out of distribution. Permission checks and token
// validation fail closed for suspended sites.
func (s *SiteService) Suspend(ctx context.Context, siteID string) error {
	return s.sites.UpdateStatus(ctx, siteID, models.SiteStatusSuspended, utils.TimeToMillis(s.now()))
}

// Activate restores a suspended site.
func (s *SiteService) Activate(ctx context.Context, siteID string) error {
	return s.sites.UpdateStatus(ctx, siteID, models.SiteStatusActive, utils.TimeToMillis(s.now()))
}

// StoryService manages the story registry.
type StoryService struct {
	stories StoryStore
	logger  *logrus.Logger
	now     func() time.Time
}

// NewStoryService creates a new StoryService
func NewStoryService(stories StoryStore, logger *logrus.Logger) *StoryService {
	return &StoryService{stories: stories, logger: logger, now: time.Now}
}

// Create registers a story for syndication. Story IDs come from the upstream
// content platform and are kept as-is.
func (s *StoryService) Create(ctx context.Context, req *models.StoryCreateRequest) (*models.Story, error) {
	story := &models.Story{
		StoryID:       req.StoryID,
		StorytellerID: req.StorytellerID,
		Title:         req.Title,
		CreatedTime:   utils.TimeToMillis(s.now()),
	}

	if err := s.stories.Create(ctx, story); err != nil {
		return nil, err
	}

	return story, nil
}

// Get returns a story by ID
func (s *StoryService) Get(ctx context.Context, storyID string) (*models.Story, error) {
	return s.stories.GetByID(ctx, storyID)
}

// List returns registered stories
func (s *StoryService) List(ctx context.Context, limit, offset int) ([]models.Story, error) {
	return s.stories.List(ctx, limit, offset)
}
