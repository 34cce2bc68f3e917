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
	insertStoryQuery = `INSERT INTO SY_STORY (STORY_ID, STORYTELLER_ID, TITLE, CREATED_TIME)
		VALUES (:STORY_ID, :STORYTELLER_ID, :TITLE, :CREATED_TIME)`

	selectStoryByIDQuery = `SELECT * FROM SY_STORY WHERE STORY_ID = ?`

	listStoriesQuery = `SELECT * FROM SY_STORY ORDER BY CREATED_TIME DESC LIMIT ? OFFSET ?`
)

// StoryDAO handles database operations for the story registry
type StoryDAO struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewStoryDAO creates a new StoryDAO
func NewStoryDAO(db *database.DB, logger *logrus.Logger) *StoryDAO {
	return &StoryDAO{db: db, logger: logger}
}

// Create registers a story for syndication
func (d *StoryDAO) Create(ctx context.Context, story *models.Story) error {
	_, err := d.db.NamedExecContext(ctx, insertStoryQuery, story)
	if err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("story %s already registered: %w", story.StoryID, errs.ErrDuplicateConsent)
		}
		return fmt.Errorf("failed to insert story: %w", err)
	}
	return nil
}

// GetByID retrieves a story by its ID
func (d *StoryDAO) GetByID(ctx context.Context, storyID string) (*models.Story, error) {
	var story models.Story
	err := d.db.GetContext(ctx, &story, selectStoryByIDQuery, storyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("story %s: %w", storyID, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get story: %w", err)
	}
	return &story, nil
}

// List returns registered stories, newest first
func (d *StoryDAO) List(ctx context.Context, limit, offset int) ([]models.Story, error) {
	stories := []models.Story{}
	err := d.db.SelectContext(ctx, &stories, listStoriesQuery, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return stories, nil
}
