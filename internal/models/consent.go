package models

import (
	"time"
)

// ConsentStatus is the lifecycle state of a syndication consent record.
type ConsentStatus string

const (
	ConsentStatusPending        ConsentStatus = "pending"
	ConsentStatusRequiresReview ConsentStatus = "requires_review"
	ConsentStatusApproved       ConsentStatus = "approved"
	ConsentStatusDenied         ConsentStatus = "denied"
	ConsentStatusRevoked        ConsentStatus = "revoked"
	ConsentStatusExpired        ConsentStatus = "expired"
)

// consentTransitions is the exhaustive lifecycle graph. Any attempted transition
// that is not an edge here is rejected with errs.ErrInvalidStateTransition.
var consentTransitions = map[ConsentStatus][]ConsentStatus{
	ConsentStatusPending:        {ConsentStatusRequiresReview, ConsentStatusApproved, ConsentStatusDenied},
	ConsentStatusRequiresReview: {ConsentStatusApproved, ConsentStatusDenied},
	ConsentStatusApproved:       {ConsentStatusRevoked, ConsentStatusExpired},
	ConsentStatusDenied:         {},
	ConsentStatusRevoked:        {},
	ConsentStatusExpired:        {},
}

// CanTransition reports whether from → to is an edge of the lifecycle graph.
func CanTransition(from, to ConsentStatus) bool {
	for _, next := range consentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the record's lifecycle.
// A new request for the pair creates a fresh record instead of resurrecting it.
func (s ConsentStatus) IsTerminal() bool {
	switch s {
	case ConsentStatusDenied, ConsentStatusRevoked, ConsentStatusExpired:
		return true
	}
	return false
}

// IsValid reports whether s is a known consent status.
func (s ConsentStatus) IsValid() bool {
	_, ok := consentTransitions[s]
	return ok
}

// ConsentPermissions is the fixed permission set a storyteller grants a site.
type ConsentPermissions struct {
	AllowFullResolution bool `json:"allowFullResolution"`
	AllowDownload       bool `json:"allowDownload"`
	AllowEmbedding      bool `json:"allowEmbedding"`
}

// ConsentRecord represents the SY_CONSENT table.
type ConsentRecord struct {
	ConsentID             string        `db:"CONSENT_ID" json:"consentId"`
	StoryID               string        `db:"STORY_ID" json:"storyId"`
	SiteID                string        `db:"SITE_ID" json:"siteId"`
	Status                ConsentStatus `db:"STATUS" json:"status"`
	AllowFullResolution   bool          `db:"ALLOW_FULL_RESOLUTION" json:"allowFullResolution"`
	AllowDownload         bool          `db:"ALLOW_DOWNLOAD" json:"allowDownload"`
	AllowEmbedding        bool          `db:"ALLOW_EMBEDDING" json:"allowEmbedding"`
	RequiresElderApproval bool          `db:"REQUIRES_ELDER_APPROVAL" json:"requiresElderApproval"`
	ApprovedBy            *string       `db:"APPROVED_BY" json:"approvedBy,omitempty"`
	ApprovedAt            *int64        `db:"APPROVED_AT" json:"approvedAt,omitempty"`
	ExpiresAt             *int64        `db:"EXPIRES_AT" json:"expiresAt,omitempty"`
	RevokedAt             *int64        `db:"REVOKED_AT" json:"revokedAt,omitempty"`
	RevocationReason      *string       `db:"REVOCATION_REASON" json:"revocationReason,omitempty"`
	Version               int64         `db:"VERSION" json:"version"`
	CreatedTime           int64         `db:"CREATED_TIME" json:"createdTime"`
	UpdatedTime           int64         `db:"UPDATED_TIME" json:"updatedTime"`

	// PairActive mirrors the generated PAIR_ACTIVE column backing the
	// one-live-record-per-pair unique key. Never written by the application.
	PairActive *bool `db:"PAIR_ACTIVE" json:"-"`
}

// Permissions returns the granted permission set.
func (c *ConsentRecord) Permissions() ConsentPermissions {
	return ConsentPermissions{
		AllowFullResolution: c.AllowFullResolution,
		AllowDownload:       c.AllowDownload,
		AllowEmbedding:      c.AllowEmbedding,
	}
}

// IsExpiredAt reports whether the record is past its expiry by wall clock,
// independent of whether the sweep has run yet.
func (c *ConsentRecord) IsExpiredAt(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return now.UnixNano()/int64(time.Millisecond) > *c.ExpiresAt
}

// ConsentStatusUpdate is a versioned conditional status mutation. The update
// applies only when the stored row still matches (ConsentID, FromStatus,
// ExpectedVersion); otherwise the store reports a concurrency conflict.
type ConsentStatusUpdate struct {
	ConsentID       string
	FromStatus      ConsentStatus
	ToStatus        ConsentStatus
	ExpectedVersion int64
	UpdatedTime     int64

	// Optional field mutations applied with the status change.
	ApprovedBy            *string
	ApprovedAt            *int64
	ExpiresAt             *int64
	RevokedAt             *int64
	RevocationReason      *string
	RequiresElderApproval *bool
}

// ConsentCreateRequest is the internal payload for requesting consent.
type ConsentCreateRequest struct {
	StoryID               string             `json:"storyId" binding:"required"`
	SiteID                string             `json:"siteId" binding:"required"`
	Permissions           ConsentPermissions `json:"permissions"`
	RequiresElderApproval bool               `json:"requiresElderApproval"`
}

// ConsentActionRequest carries the actor and reason for an approve/deny/revoke call.
type ConsentActionRequest struct {
	ActionBy string `json:"actionBy" binding:"required"`
	Reason   string `json:"reason,omitempty"`
}

// ConsentSearchParams represents search parameters for consent queries.
type ConsentSearchParams struct {
	StoryIDs []string        `form:"storyIds"`
	SiteIDs  []string        `form:"siteIds"`
	Statuses []ConsentStatus `form:"statuses"`
	Limit    int             `form:"limit"`
	Offset   int             `form:"offset"`
}

// ConsentStatusEvent is the payload handed to the notification collaborator on
// every approving or terminal transition.
type ConsentStatusEvent struct {
	ConsentID string        `json:"consentId"`
	StoryID   string        `json:"storyId"`
	SiteID    string        `json:"siteId"`
	NewStatus ConsentStatus `json:"newStatus"`
	ActorID   string        `json:"actorId,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	EventTime int64         `json:"eventTime"`
}
