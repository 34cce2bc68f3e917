package dao

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/database"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
)

const (
	insertEngagementQuery = `INSERT INTO SY_ENGAGEMENT_EVENT (EVENT_ID, STORY_ID, SITE_ID,
		EVENT_TYPE, CLIENT_NONCE, OCCURRED_AT, RECORDED_AT)
		VALUES (:EVENT_ID, :STORY_ID, :SITE_ID, :EVENT_TYPE, :CLIENT_NONCE, :OCCURRED_AT, :RECORDED_AT)`

	existsNonceQuery = `SELECT COUNT(1) FROM SY_ENGAGEMENT_EVENT
		WHERE STORY_ID = ? AND SITE_ID = ? AND EVENT_TYPE = ? AND CLIENT_NONCE = ?
		AND RECORDED_AT >= ?`

	pairTotalsQuery = `SELECT st.STORYTELLER_ID AS STORYTELLER_ID, ev.SITE_ID AS SITE_ID,
		SUM(CASE WHEN ev.EVENT_TYPE = 'view' THEN 1 ELSE 0 END)  AS VIEWS,
		SUM(CASE WHEN ev.EVENT_TYPE = 'click' THEN 1 ELSE 0 END) AS CLICKS,
		SUM(CASE WHEN ev.EVENT_TYPE = 'share' THEN 1 ELSE 0 END) AS SHARES
		FROM SY_ENGAGEMENT_EVENT ev
		JOIN SY_STORY st ON st.STORY_ID = ev.STORY_ID
		WHERE ev.OCCURRED_AT >= ? AND ev.OCCURRED_AT < ?
		GROUP BY st.STORYTELLER_ID, ev.SITE_ID
		ORDER BY st.STORYTELLER_ID, ev.SITE_ID`
)

// EngagementDAO handles database operations for the append-only engagement log
type EngagementDAO struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewEngagementDAO creates a new EngagementDAO
func NewEngagementDAO(db *database.DB, logger *logrus.Logger) *EngagementDAO {
	return &EngagementDAO{db: db, logger: logger}
}

// Append inserts an engagement event. A unique key violation on
// (story, site, type, nonce) means a concurrent duplicate; callers treat it
// as already recorded.
func (d *EngagementDAO) Append(ctx context.Context, event *models.EngagementEvent) (bool, error) {
	_, err := d.db.NamedExecContext(ctx, insertEngagementQuery, event)
	if err != nil {
		if isDuplicateEntry(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert engagement event: %w", err)
	}
	return true, nil
}

// ExistsNonce reports whether the (story, site, type, nonce) combination was
// already recorded at or after sinceMillis.
func (d *EngagementDAO) ExistsNonce(ctx context.Context, storyID, siteID string, eventType models.EventType, nonce string, sinceMillis int64) (bool, error) {
	var count int
	err := d.db.GetContext(ctx, &count, existsNonceQuery, storyID, siteID, eventType, nonce, sinceMillis)
	if err != nil {
		return false, fmt.Errorf("failed to check event nonce: %w", err)
	}
	return count > 0, nil
}

// PairTotalsInRange aggregates engagement counts per (storyteller, site) pair
// for events that occurred in [startMillis, endMillis).
func (d *EngagementDAO) PairTotalsInRange(ctx context.Context, startMillis, endMillis int64) ([]models.PairActivity, error) {
	totals := []models.PairActivity{}
	err := d.db.SelectContext(ctx, &totals, pairTotalsQuery, startMillis, endMillis)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate engagement totals: %w", err)
	}
	return totals, nil
}
