package models

// ConsentStatusAudit represents the SY_CONSENT_STATUS_AUDIT table. One row per
// realized status transition; never deleted.
type ConsentStatusAudit struct {
	AuditID        string        `db:"AUDIT_ID" json:"auditId"`
	ConsentID      string        `db:"CONSENT_ID" json:"consentId"`
	PreviousStatus ConsentStatus `db:"PREVIOUS_STATUS" json:"previousStatus"`
	CurrentStatus  ConsentStatus `db:"CURRENT_STATUS" json:"currentStatus"`
	ActionBy       *string       `db:"ACTION_BY" json:"actionBy,omitempty"`
	Reason         *string       `db:"REASON" json:"reason,omitempty"`
	ActionTime     int64         `db:"ACTION_TIME" json:"actionTime"`
}
