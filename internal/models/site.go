package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// SiteStatus is the operational state of a syndication partner site.
type SiteStatus string

const (
	SiteStatusActive    SiteStatus = "active"
	SiteStatusSuspended SiteStatus = "suspended"
)

// StringSlice stores a JSON string array in a MySQL column.
type StringSlice []string

// Scan implements the sql.Scanner interface for StringSlice
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type for StringSlice: %T", value)
	}

	var out []string
	if err := json.Unmarshal(bytes, &out); err != nil {
		return fmt.Errorf("invalid JSON array: %w", err)
	}
	*s = out
	return nil
}

// Value implements the driver.Valuer interface for StringSlice
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// SyndicationSite represents the SY_SITE table.
type SyndicationSite struct {
	SiteID              string      `db:"SITE_ID" json:"siteId"`
	Slug                string      `db:"SLUG" json:"slug"`
	Name                string      `db:"NAME" json:"name"`
	Status              SiteStatus  `db:"STATUS" json:"status"`
	AllowedDomains      StringSlice `db:"ALLOWED_DOMAINS" json:"allowedDomains"`
	RevenueSharePct     int         `db:"REVENUE_SHARE_PCT" json:"revenueSharePct"`
	RetentionDurationMS *int64      `db:"RETENTION_DURATION_MS" json:"retentionDurationMs,omitempty"`
	CreatedTime         int64       `db:"CREATED_TIME" json:"createdTime"`
	UpdatedTime         int64       `db:"UPDATED_TIME" json:"updatedTime"`
}

// NormalizeDomain lowercases a domain and strips the scheme, a leading
// "www." and any trailing slash, so "https://www.Example.org/" and
// "example.org" compare equal.
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	return strings.TrimSuffix(d, "/")
}

// AllowsDomain reports whether the site may render stories on the given
// domain. An empty allow-list places no restriction. Subdomains of an
// allowed domain are allowed; an empty domain against a non-empty list
// is rejected.
func (s *SyndicationSite) AllowsDomain(domain string) bool {
	if len(s.AllowedDomains) == 0 {
		return true
	}
	normalized := NormalizeDomain(domain)
	if normalized == "" {
		return false
	}
	for _, entry := range s.AllowedDomains {
		allowed := NormalizeDomain(entry)
		if normalized == allowed || strings.HasSuffix(normalized, "."+allowed) {
			return true
		}
	}
	return false
}

// SiteCreateRequest is the payload for registering a partner site.
type SiteCreateRequest struct {
	Slug                string   `json:"slug" binding:"required"`
	Name                string   `json:"name" binding:"required"`
	AllowedDomains      []string `json:"allowedDomains"`
	RevenueSharePct     int      `json:"revenueSharePct"`
	RetentionDurationMS *int64   `json:"retentionDurationMs,omitempty"`
}
