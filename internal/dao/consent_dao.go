package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/database"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/errs"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
)

const (
	insertConsentQuery = `INSERT INTO SY_CONSENT (CONSENT_ID, STORY_ID, SITE_ID, STATUS,
		ALLOW_FULL_RESOLUTION, ALLOW_DOWNLOAD, ALLOW_EMBEDDING, REQUIRES_ELDER_APPROVAL,
		APPROVED_BY, APPROVED_AT, EXPIRES_AT, REVOKED_AT, REVOCATION_REASON,
		VERSION, CREATED_TIME, UPDATED_TIME)
		VALUES (:CONSENT_ID, :STORY_ID, :SITE_ID, :STATUS,
		:ALLOW_FULL_RESOLUTION, :ALLOW_DOWNLOAD, :ALLOW_EMBEDDING, :REQUIRES_ELDER_APPROVAL,
		:APPROVED_BY, :APPROVED_AT, :EXPIRES_AT, :REVOKED_AT, :REVOCATION_REASON,
		:VERSION, :CREATED_TIME, :UPDATED_TIME)`

	insertStatusAuditQuery = `INSERT INTO SY_CONSENT_STATUS_AUDIT (AUDIT_ID, CONSENT_ID,
		PREVIOUS_STATUS, CURRENT_STATUS, ACTION_BY, REASON, ACTION_TIME)
		VALUES (:AUDIT_ID, :CONSENT_ID, :PREVIOUS_STATUS, :CURRENT_STATUS,
		:ACTION_BY, :REASON, :ACTION_TIME)`

	selectConsentByIDQuery = `SELECT * FROM SY_CONSENT WHERE CONSENT_ID = ?`

	selectActiveConsentByPairQuery = `SELECT * FROM SY_CONSENT
		WHERE STORY_ID = ? AND SITE_ID = ? AND STATUS IN (?, ?, ?)
		ORDER BY CREATED_TIME DESC LIMIT 1`

	selectExpiredApprovedQuery = `SELECT * FROM SY_CONSENT
		WHERE STATUS = ? AND EXPIRES_AT IS NOT NULL AND EXPIRES_AT <= ?
		ORDER BY EXPIRES_AT ASC LIMIT ?`

	selectAuditsByConsentQuery = `SELECT * FROM SY_CONSENT_STATUS_AUDIT
		WHERE CONSENT_ID = ? ORDER BY ACTION_TIME ASC, AUDIT_ID ASC`
)

// ConsentDAO handles database operations for consent records and their
// status audit trail.
type ConsentDAO struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewConsentDAO creates a new ConsentDAO
func NewConsentDAO(db *database.DB, logger *logrus.Logger) *ConsentDAO {
	return &ConsentDAO{db: db, logger: logger}
}

// CreateWithAudit inserts a new consent record and its creation audit row
// in a single transaction. A collision on the active-pair unique key means
// another writer inserted a live record for the same (story, site) pair
// between the caller's lookup and this insert.
func (d *ConsentDAO) CreateWithAudit(ctx context.Context, consent *models.ConsentRecord, audit *models.ConsentStatusAudit) error {
	return d.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		if _, err := tx.NamedExecContext(ctx, insertConsentQuery, consent); err != nil {
			if isDuplicateEntry(err) {
				return fmt.Errorf("active consent exists for story %s site %s: %w",
					consent.StoryID, consent.SiteID, errs.ErrDuplicateConsent)
			}
			return fmt.Errorf("failed to insert consent: %w", err)
		}
		if _, err := tx.NamedExecContext(ctx, insertStatusAuditQuery, audit); err != nil {
			return fmt.Errorf("failed to insert status audit: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a consent record by its ID
func (d *ConsentDAO) GetByID(ctx context.Context, consentID string) (*models.ConsentRecord, error) {
	var consent models.ConsentRecord
	err := d.db.GetContext(ctx, &consent, selectConsentByIDQuery, consentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("consent %s: %w", consentID, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get consent: %w", err)
	}
	return &consent, nil
}

// GetActiveByPair returns the non-terminal consent record for a
// (story, site) pair, or errs.ErrNotFound when none exists.
func (d *ConsentDAO) GetActiveByPair(ctx context.Context, storyID, siteID string) (*models.ConsentRecord, error) {
	var consent models.ConsentRecord
	err := d.db.GetContext(ctx, &consent, selectActiveConsentByPairQuery,
		storyID, siteID,
		models.ConsentStatusPending, models.ConsentStatusRequiresReview, models.ConsentStatusApproved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("active consent for story %s site %s: %w", storyID, siteID, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get active consent: %w", err)
	}
	return &consent, nil
}

// UpdateStatusVersioned applies a status transition conditionally on
// (CONSENT_ID, FromStatus, ExpectedVersion) and writes the audit row in the
// same transaction. A lost race surfaces as errs.ErrConcurrencyConflict; a
// missing record as errs.ErrNotFound.
func (d *ConsentDAO) UpdateStatusVersioned(ctx context.Context, update *models.ConsentStatusUpdate, audit *models.ConsentStatusAudit) error {
	query, args := buildStatusUpdate(update)

	return d.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update consent status: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if rows == 0 {
			var exists int
			err := tx.GetContext(ctx, &exists, `SELECT 1 FROM SY_CONSENT WHERE CONSENT_ID = ?`, update.ConsentID)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("consent %s: %w", update.ConsentID, errs.ErrNotFound)
			}
			if err != nil {
				return fmt.Errorf("failed to check consent existence: %w", err)
			}
			return fmt.Errorf("consent %s version %d: %w",
				update.ConsentID, update.ExpectedVersion, errs.ErrConcurrencyConflict)
		}

		if _, err := tx.NamedExecContext(ctx, insertStatusAuditQuery, audit); err != nil {
			return fmt.Errorf("failed to insert status audit: %w", err)
		}

		d.logger.WithFields(logrus.Fields{
			"consentId": update.ConsentID,
			"from":      update.FromStatus,
			"to":        update.ToStatus,
		}).Debug("Consent status updated")

		return nil
	})
}

// buildStatusUpdate assembles the conditional UPDATE with only the field
// mutations the transition carries.
func buildStatusUpdate(update *models.ConsentStatusUpdate) (string, []interface{}) {
	var sets strings.Builder
	sets.WriteString("UPDATE SY_CONSENT SET STATUS = ?, VERSION = VERSION + 1, UPDATED_TIME = ?")
	args := []interface{}{update.ToStatus, update.UpdatedTime}

	if update.ApprovedBy != nil {
		sets.WriteString(", APPROVED_BY = ?")
		args = append(args, *update.ApprovedBy)
	}
	if update.ApprovedAt != nil {
		sets.WriteString(", APPROVED_AT = ?")
		args = append(args, *update.ApprovedAt)
	}
	if update.ExpiresAt != nil {
		sets.WriteString(", EXPIRES_AT = ?")
		args = append(args, *update.ExpiresAt)
	}
	if update.RevokedAt != nil {
		sets.WriteString(", REVOKED_AT = ?")
		args = append(args, *update.RevokedAt)
	}
	if update.RevocationReason != nil {
		sets.WriteString(", REVOCATION_REASON = ?")
		args = append(args, *update.RevocationReason)
	}
	if update.RequiresElderApproval != nil {
		sets.WriteString(", REQUIRES_ELDER_APPROVAL = ?")
		args = append(args, *update.RequiresElderApproval)
	}

	sets.WriteString(" WHERE CONSENT_ID = ? AND STATUS = ? AND VERSION = ?")
	args = append(args, update.ConsentID, update.FromStatus, update.ExpectedVersion)

	return sets.String(), args
}

// ListExpiredApproved returns approved records whose expiry is at or before
// nowMillis, oldest expiry first.
func (d *ConsentDAO) ListExpiredApproved(ctx context.Context, nowMillis int64, limit int) ([]models.ConsentRecord, error) {
	consents := []models.ConsentRecord{}
	err := d.db.SelectContext(ctx, &consents, selectExpiredApprovedQuery,
		models.ConsentStatusApproved, nowMillis, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired consents: %w", err)
	}
	return consents, nil
}

// Search returns consent records matching the given filters
func (d *ConsentDAO) Search(ctx context.Context, params *models.ConsentSearchParams) ([]models.ConsentRecord, error) {
	query := "SELECT * FROM SY_CONSENT WHERE 1=1"
	args := []interface{}{}

	if len(params.StoryIDs) > 0 {
		query += " AND STORY_ID IN (?)"
		args = append(args, params.StoryIDs)
	}
	if len(params.SiteIDs) > 0 {
		query += " AND SITE_ID IN (?)"
		args = append(args, params.SiteIDs)
	}
	if len(params.Statuses) > 0 {
		query += " AND STATUS IN (?)"
		args = append(args, params.Statuses)
	}

	query += " ORDER BY CREATED_TIME DESC LIMIT ? OFFSET ?"
	args = append(args, params.Limit, params.Offset)

	expanded, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build consent search query: %w", err)
	}

	consents := []models.ConsentRecord{}
	if err := d.db.SelectContext(ctx, &consents, expanded, expandedArgs...); err != nil {
		return nil, fmt.Errorf("failed to search consents: %w", err)
	}
	return consents, nil
}

// AuditsByConsentID returns the full status history of a consent record,
// oldest first.
func (d *ConsentDAO) AuditsByConsentID(ctx context.Context, consentID string) ([]models.ConsentStatusAudit, error) {
	audits := []models.ConsentStatusAudit{}
	err := d.db.SelectContext(ctx, &audits, selectAuditsByConsentQuery, consentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list consent audits: %w", err)
	}
	return audits, nil
}
