package models

// EmbedToken represents the SY_EMBED_TOKEN table. Only the SHA-256 hash of the
// token is stored; the plaintext exists transiently at issuance and is never
// persisted or retrievable again.
type EmbedToken struct {
	TokenHash string `db:"TOKEN_HASH" json:"-"`
	ConsentID string `db:"CONSENT_ID" json:"consentId"`
	IssuedAt  int64  `db:"ISSUED_AT" json:"issuedAt"`
	ExpiresAt int64  `db:"EXPIRES_AT" json:"expiresAt"`
}

// IssuedToken is the one-time issuance response carrying the plaintext.
type IssuedToken struct {
	Token     string `json:"token"`
	ConsentID string `json:"consentId"`
	ExpiresAt int64  `json:"expiresAt"`
}

// PermissionDecision is the read-side answer to "can site X render story Y".
type PermissionDecision struct {
	Allowed     bool               `json:"allowed"`
	Permissions ConsentPermissions `json:"permissions"`
}
