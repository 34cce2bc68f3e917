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

// EngagementService records token-gated engagement events. The log is
// append-only; replays inside the dedup window are silent no-ops.
type EngagementService struct {
	events      EngagementStore
	tokens      *TokenService
	logger      *logrus.Logger
	dedupWindow time.Duration
	now         func() time.Time
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(events EngagementStore, tokens *TokenService,
	logger *logrus.Logger, dedupWindow time.Duration) *EngagementService {
	if dedupWindow <= 0 {
		dedupWindow = 24 * time.Hour
	}
	return &EngagementService{
		events:      events,
		tokens:      tokens,
		logger:      logger,
		dedupWindow: dedupWindow,
		now:         time.Now,
	}
}

// Record validates the caller's embed token and appends the event. The token
// must belong to the exact (story, site) pair being reported; nothing is
// written on any authorization failure. Returns the stored event and whether
// this call actually appended it.
func (s *EngagementService) Record(ctx context.Context, req *models.EngagementRequest) (*models.EngagementEvent, bool, error) {
	eventType := models.EventType(req.EventType)
	if !eventType.IsValid() {
		return nil, false, fmt.Errorf("unknown event type %q: %w", req.EventType, errs.ErrInvalidInput)
	}

	consent, err := s.tokens.Validate(ctx, req.Token, req.Domain)
	if err != nil {
		return nil, false, err
	}
	if consent.StoryID != req.StoryID || consent.SiteID != req.SiteID {
		return nil, false, fmt.Errorf("token not issued for story %s site %s: %w",
			req.StoryID, req.SiteID, errs.ErrUnauthorized)
	}

	now := s.now()
	nowMillis := utils.TimeToMillis(now)
	since := utils.TimeToMillis(now.Add(-s.dedupWindow))

	seen, err := s.events.ExistsNonce(ctx, req.StoryID, req.SiteID, eventType, req.ClientNonce, since)
	if err != nil {
		return nil, false, err
	}
	if seen {
		return nil, false, nil
	}

	occurredAt := req.OccurredAt
	if occurredAt <= 0 {
		occurredAt = nowMillis
	}

	event := &models.EngagementEvent{
		EventID:     utils.GenerateEventID(),
		StoryID:     req.StoryID,
		SiteID:      req.SiteID,
		EventType:   eventType,
		ClientNonce: req.ClientNonce,
		OccurredAt:  occurredAt,
		RecordedAt:  nowMillis,
	}

	inserted, err := s.events.Append(ctx, event)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		// Lost a race against an identical concurrent report.
		return nil, false, nil
	}

	s.logger.WithFields(logrus.Fields{
		"eventId":   event.EventID,
		"storyId":   event.StoryID,
		"siteId":    event.SiteID,
		"eventType": event.EventType,
	}).Debug("Engagement event recorded")

	return event, true, nil
}
