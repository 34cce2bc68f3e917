package models

// EventType classifies an engagement event reported by a redistributing site.
type EventType string

const (
	EventTypeView  EventType = "view"
	EventTypeClick EventType = "click"
	EventTypeShare EventType = "share"
)

// IsValid reports whether t is a known event type.
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeView, EventTypeClick, EventTypeShare:
		return true
	}
	return false
}

// EngagementEvent represents the SY_ENGAGEMENT_EVENT table. Append-only; rows
// are never updated or deleted.
type EngagementEvent struct {
	EventID     string    `db:"EVENT_ID" json:"eventId"`
	StoryID     string    `db:"STORY_ID" json:"storyId"`
	SiteID      string    `db:"SITE_ID" json:"siteId"`
	EventType   EventType `db:"EVENT_TYPE" json:"eventType"`
	ClientNonce string    `db:"CLIENT_NONCE" json:"clientNonce"`
	OccurredAt  int64     `db:"OCCURRED_AT" json:"occurredAt"`
	RecordedAt  int64     `db:"RECORDED_AT" json:"recordedAt"`
}

// EngagementRequest is the partner-facing payload for posting an event.
type EngagementRequest struct {
	StoryID     string `json:"storyId" binding:"required"`
	SiteID      string `json:"siteId" binding:"required"`
	EventType   string `json:"eventType" binding:"required"`
	ClientNonce string `json:"clientNonce" binding:"required"`
	OccurredAt  int64  `json:"occurredAt"`
	Token       string `json:"token" binding:"required"`

	// Domain is the page the event came from; the handler falls back to the
	// Origin header when the payload omits it.
	Domain string `json:"domain"`
}

// PairActivity is the grouped engagement count for one (storyteller, site)
// pair within a revenue period.
type PairActivity struct {
	StorytellerID string `db:"STORYTELLER_ID"`
	SiteID        string `db:"SITE_ID"`
	Views         int64  `db:"VIEWS"`
	Clicks        int64  `db:"CLICKS"`
	Shares        int64  `db:"SHARES"`
}
