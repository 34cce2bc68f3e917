package dao

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/database"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/errs"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
)

func newMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	// Registered as "mysql" so sqlx picks the right bindvar style for
	// named queries.
	return database.Wrap(sqlx.NewDb(mockDB, "mysql"), logger), mock
}

func statusUpdate() *models.ConsentStatusUpdate {
	return &models.ConsentStatusUpdate{
		ConsentID:       "CONSENT-1",
		FromStatus:      models.ConsentStatusPending,
		ToStatus:        models.ConsentStatusApproved,
		ExpectedVersion: 1,
		UpdatedTime:     1700000000000,
	}
}

func statusAudit() *models.ConsentStatusAudit {
	return &models.ConsentStatusAudit{
		AuditID:        "AUDIT-1",
		ConsentID:      "CONSENT-1",
		PreviousStatus: models.ConsentStatusPending,
		CurrentStatus:  models.ConsentStatusApproved,
		ActionTime:     1700000000000,
	}
}

func TestUpdateStatusVersioned_Success(t *testing.T) {
	db, mock := newMockDB(t)
	d := NewConsentDAO(db, logrus.New())

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE SY_CONSENT SET STATUS").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO SY_CONSENT_STATUS_AUDIT").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := d.UpdateStatusVersioned(context.Background(), statusUpdate(), statusAudit())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusVersioned_VersionRaceIsConflict(t *testing.T) {
	db, mock := newMockDB(t)
	d := NewConsentDAO(db, logrus.New())

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE SY_CONSENT SET STATUS").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM SY_CONSENT").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	err := d.UpdateStatusVersioned(context.Background(), statusUpdate(), statusAudit())

	assert.ErrorIs(t, err, errs.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusVersioned_MissingRecordIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	d := NewConsentDAO(db, logrus.New())

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE SY_CONSENT SET STATUS").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM SY_CONSENT").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := d.UpdateStatusVersioned(context.Background(), statusUpdate(), statusAudit())

	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildStatusUpdate_OnlyRequestedMutations(t *testing.T) {
	update := statusUpdate()
	approver := "elder-1"
	update.ApprovedBy = &approver

	query, args := buildStatusUpdate(update)

	assert.Contains(t, query, "APPROVED_BY = ?")
	assert.NotContains(t, query, "REVOKED_AT")
	assert.NotContains(t, query, "EXPIRES_AT")
	assert.Contains(t, query, "WHERE CONSENT_ID = ? AND STATUS = ? AND VERSION = ?")
	// STATUS, UPDATED_TIME, APPROVED_BY + three WHERE params
	assert.Len(t, args, 6)
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	d := NewConsentDAO(db, logrus.New())

	mock.ExpectQuery("SELECT \\* FROM SY_CONSENT WHERE CONSENT_ID").
		WillReturnError(sql.ErrNoRows)

	_, err := d.GetByID(context.Background(), "CONSENT-missing")

	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithAudit_RollsBackOnAuditFailure(t *testing.T) {
	db, mock := newMockDB(t)
	d := NewConsentDAO(db, logrus.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO SY_CONSENT ").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO SY_CONSENT_STATUS_AUDIT").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := d.CreateWithAudit(context.Background(), &models.ConsentRecord{
		ConsentID: "CONSENT-1", StoryID: "STORY-1", SiteID: "SITE-1",
		Status: models.ConsentStatusPending, Version: 1,
	}, statusAudit())

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithAudit_ActivePairCollision(t *testing.T) {
	db, mock := newMockDB(t)
	d := NewConsentDAO(db, logrus.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO SY_CONSENT ").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	err := d.CreateWithAudit(context.Background(), &models.ConsentRecord{
		ConsentID: "CONSENT-2", StoryID: "STORY-1", SiteID: "SITE-1",
		Status: models.ConsentStatusPending, Version: 1,
	}, statusAudit())

	assert.ErrorIs(t, err, errs.ErrDuplicateConsent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
