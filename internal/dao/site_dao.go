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
	insertSiteQuery = `INSERT INTO SY_SITE (SITE_ID, SLUG, NAME, STATUS, ALLOWED_DOMAINS,
		REVENUE_SHARE_PCT, RETENTION_DURATION_MS, CREATED_TIME, UPDATED_TIME)
		VALUES (:SITE_ID, :SLUG, :NAME, :STATUS, :ALLOWED_DOMAINS,
		:REVENUE_SHARE_PCT, :RETENTION_DURATION_MS, :CREATED_TIME, :UPDATED_TIME)`

	selectSiteByIDQuery = `SELECT * FROM SY_SITE WHERE SITE_ID = ?`

	selectSiteBySlugQuery = `SELECT * FROM SY_SITE WHERE SLUG = ?`

	listSitesQuery = `SELECT * FROM SY_SITE ORDER BY CREATED_TIME DESC LIMIT ? OFFSET ?`

	updateSiteStatusQuery = `UPDATE SY_SITE SET STATUS = ?, UPDATED_TIME = ? WHERE SITE_ID = ?`
)

// SiteDAO handles database operations for syndication sites
type SiteDAO struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewSiteDAO creates a new SiteDAO
func NewSiteDAO(db *database.DB, logger *logrus.Logger) *SiteDAO {
	return &SiteDAO{db: db, logger: logger}
}

// Create inserts a new site record
func (d *SiteDAO) Create(ctx context.Context, site *models.SyndicationSite) error {
	_, err := d.db.NamedExecContext(ctx, insertSiteQuery, site)
	if err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("site slug %q already registered: %w", site.Slug, errs.ErrDuplicateConsent)
		}
		return fmt.Errorf("failed to insert site: %w", err)
	}

	d.logger.WithFields(logrus.Fields{
		"siteId": site.SiteID,
		"slug":   site.Slug,
	}).Debug("Site created")

	return nil
}

// GetByID retrieves a site by its ID
func (d *SiteDAO) GetByID(ctx context.Context, siteID string) (*models.SyndicationSite, error) {
	var site models.SyndicationSite
	err := d.db.GetContext(ctx, &site, selectSiteByIDQuery, siteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("site %s: %w", siteID, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	return &site, nil
}

// GetBySlug retrieves a site by its slug
func (d *SiteDAO) GetBySlug(ctx context.Context, slug string) (*models.SyndicationSite, error) {
	var site models.SyndicationSite
	err := d.db.GetContext(ctx, &site, selectSiteBySlugQuery, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("site slug %s: %w", slug, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get site by slug: %w", err)
	}
	return &site, nil
}

// List returns registered sites, newest first
func (d *SiteDAO) List(ctx context.Context, limit, offset int) ([]models.SyndicationSite, error) {
	sites := []models.SyndicationSite{}
	err := d.db.SelectContext(ctx, &sites, listSitesQuery, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	return sites, nil
}

// UpdateStatus sets the operational status of a site
func (d *SiteDAO) UpdateStatus(ctx context.Context, siteID string, status models.SiteStatus, updatedTime int64) error {
	result, err := d.db.ExecContext(ctx, updateSiteStatusQuery, status, updatedTime, siteID)
	if err != nil {
		return fmt.Errorf("failed to update site status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("site %s: %w", siteID, errs.ErrNotFound)
	}

	return nil
}
