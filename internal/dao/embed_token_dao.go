package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/database"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/errs"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
)

const (
	insertEmbedTokenQuery = `INSERT INTO SY_EMBED_TOKEN (TOKEN_HASH, CONSENT_ID, ISSUED_AT, EXPIRES_AT)
		VALUES (:TOKEN_HASH, :CONSENT_ID, :ISSUED_AT, :EXPIRES_AT)`

	deleteTokenByConsentQuery = `DELETE FROM SY_EMBED_TOKEN WHERE CONSENT_ID = ?`

	selectTokenByHashQuery = `SELECT * FROM SY_EMBED_TOKEN WHERE TOKEN_HASH = ?`
)

// EmbedTokenDAO handles database operations for hashed embed tokens
type EmbedTokenDAO struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewEmbedTokenDAO creates a new EmbedTokenDAO
func NewEmbedTokenDAO(db *database.DB, logger *logrus.Logger) *EmbedTokenDAO {
	return &EmbedTokenDAO{db: db, logger: logger}
}

// Replace atomically supersedes any prior token for the consent with the new
// one. At most one live token exists per consent.
func (d *EmbedTokenDAO) Replace(ctx context.Context, token *models.EmbedToken) error {
	return d.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		if _, err := tx.ExecContext(ctx, deleteTokenByConsentQuery, token.ConsentID); err != nil {
			return fmt.Errorf("failed to delete prior token: %w", err)
		}
		if _, err := tx.NamedExecContext(ctx, insertEmbedTokenQuery, token); err != nil {
			return fmt.Errorf("failed to insert token: %w", err)
		}

		d.logger.WithField("consentId", token.ConsentID).Debug("Embed token replaced")
		return nil
	})
}

// GetByHash retrieves a token record by its SHA-256 hash
func (d *EmbedTokenDAO) GetByHash(ctx context.Context, tokenHash string) (*models.EmbedToken, error) {
	var token models.EmbedToken
	err := d.db.GetContext(ctx, &token, selectTokenByHashQuery, tokenHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return &token, nil
}

// DeleteByConsentID removes the live token for a consent, if any
func (d *EmbedTokenDAO) DeleteByConsentID(ctx context.Context, consentID string) error {
	if _, err := d.db.ExecContext(ctx, deleteTokenByConsentQuery, consentID); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
