package utils

import (
	"github.com/google/uuid"
)

// GenerateSiteID generates a unique syndication site ID
func GenerateSiteID() string {
	return "SITE-" + uuid.New().String()
}

// GenerateConsentID generates a unique consent ID
func GenerateConsentID() string {
	return "CONSENT-" + uuid.New().String()
}

// GenerateAuditID generates a unique status audit ID
func GenerateAuditID() string {
	return "AUDIT-" + uuid.New().String()
}

// GenerateEventID generates a unique engagement event ID
func GenerateEventID() string {
	return "EVENT-" + uuid.New().String()
}

// GenerateLedgerEntryID generates a unique revenue ledger entry ID
func GenerateLedgerEntryID() string {
	return "LEDGER-" + uuid.New().String()
}

// IsValidUUID checks if a string is a valid UUID
func IsValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
