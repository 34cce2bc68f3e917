package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/errs"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
	"github.com/Acurioustractor/empathy-ledger-syndication/pkg/utils"
)

const tokenByteLength = 32

// TokenService issues and validates short-lived embed tokens. Only the
// SHA-256 hash is stored; the plaintext is returned exactly once at issuance.
type TokenService struct {
	tokens     TokenStore
	consents   ConsentStore
	sites      SiteStore
	permission *PermissionService
	logger     *logrus.Logger
	ttl        time.Duration
	now        func() time.Time
}

// NewTokenService creates a new TokenService
func NewTokenService(tokens TokenStore, consents ConsentStore, sites SiteStore,
	permission *PermissionService, logger *logrus.Logger, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &TokenService{
		tokens:     tokens,
		consents:   consents,
		sites:      sites,
		permission: permission,
		logger:     logger,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Issue mints a new embed token for an approved consent that grants
// embedding, superseding any prior live token for the same consent. The
// token's expiry never outlives the consent's own expiry.
func (s *TokenService) Issue(ctx context.Context, consentID string) (*models.IssuedToken, error) {
	consent, err := s.consents.GetByID(ctx, consentID)
	if err != nil {
		return nil, err
	}

	if consent.Status != models.ConsentStatusApproved {
		return nil, fmt.Errorf("consent %s is %s, not approved: %w",
			consentID, consent.Status, errs.ErrInvalidStateTransition)
	}
	if !consent.AllowEmbedding {
		return nil, fmt.Errorf("consent %s does not grant embedding: %w", consentID, errs.ErrUnauthorized)
	}

	site, err := s.sites.GetByID(ctx, consent.SiteID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if decision := s.permission.Evaluate(consent, site, now); !decision.Allowed {
		return nil, fmt.Errorf("distribution not permitted for consent %s: %w", consentID, errs.ErrUnauthorized)
	}

	plaintext, hash, err := generateToken()
	if err != nil {
		return nil, err
	}

	issuedAt := utils.TimeToMillis(now)
	expiresAt := utils.TimeToMillis(now.Add(s.ttl))
	if consent.ExpiresAt != nil && *consent.ExpiresAt < expiresAt {
		expiresAt = *consent.ExpiresAt
	}

	token := &models.EmbedToken{
		TokenHash: hash,
		ConsentID: consentID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}
	if err := s.tokens.Replace(ctx, token); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"consentId": consentID,
		"expiresAt": expiresAt,
	}).Info("Embed token issued")

	return &models.IssuedToken{
		Token:     plaintext,
		ConsentID: consentID,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate resolves a plaintext token to its consent record. The rendering
// domain, when the site restricts domains, must sit inside the site's
// allow-list. Every failure mode collapses to errs.ErrUnauthorized so
// callers cannot distinguish a bad token from a revoked consent or a
// disallowed domain. The parent consent is re-evaluated on every call
// rather than trusted from issuance time.
func (s *TokenService) Validate(ctx context.Context, plaintext, domain string) (*models.ConsentRecord, error) {
	if plaintext == "" {
		return nil, errs.ErrUnauthorized
	}

	token, err := s.tokens.GetByHash(ctx, hashToken(plaintext))
	if err != nil {
		return nil, errs.ErrUnauthorized
	}

	now := s.now()
	if utils.TimeToMillis(now) > token.ExpiresAt {
		return nil, errs.ErrUnauthorized
	}

	consent, err := s.consents.GetByID(ctx, token.ConsentID)
	if err != nil {
		return nil, errs.ErrUnauthorized
	}

	site, err := s.sites.GetByID(ctx, consent.SiteID)
	if err != nil {
		return nil, errs.ErrUnauthorized
	}

	if !site.AllowsDomain(domain) {
		s.logger.WithFields(logrus.Fields{
			"consentId": consent.ConsentID,
			"siteId":    site.SiteID,
			"domain":    domain,
		}).Warn("Embed token presented from a domain outside the site's allow-list")
		return nil, errs.ErrUnauthorized
	}

	if decision := s.permission.Evaluate(consent, site, now); !decision.Allowed {
		return nil, errs.ErrUnauthorized
	}

	return consent, nil
}

func generateToken() (plaintext, hash string, err error) {
	raw := make([]byte, tokenByteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}
	plaintext = base64.RawURLEncoding.EncodeToString(raw)
	return plaintext, hashToken(plaintext), nil
}

func hashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
