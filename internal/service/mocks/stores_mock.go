// Package mocks provides testify mocks for the service layer store contracts.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
)

// MockSiteStore is a testify mock for service.SiteStore
type MockSiteStore struct {
	mock.Mock
}

func (m *MockSiteStore) Create(ctx context.Context, site *models.SyndicationSite) error {
	args := m.Called(ctx, site)
	return args.Error(0)
}

func (m *MockSiteStore) GetByID(ctx context.Context, siteID string) (*models.SyndicationSite, error) {
	args := m.Called(ctx, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyndicationSite), args.Error(1)
}

func (m *MockSiteStore) GetBySlug(ctx context.Context, slug string) (*models.SyndicationSite, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyndicationSite), args.Error(1)
}

func (m *MockSiteStore) List(ctx context.Context, limit, offset int) ([]models.SyndicationSite, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SyndicationSite), args.Error(1)
}

func (m *MockSiteStore) UpdateStatus(ctx context.Context, siteID string, status models.SiteStatus, updatedTime int64) error {
	args := m.Called(ctx, siteID, status, updatedTime)
	return args.Error(0)
}

// MockStoryStore is a testify mock for service.StoryStore
type MockStoryStore struct {
	mock.Mock
}

func (m *MockStoryStore) Create(ctx context.Context, story *models.Story) error {
	args := m.Called(ctx, story)
	return args.Error(0)
}

func (m *MockStoryStore) GetByID(ctx context.Context, storyID string) (*models.Story, error) {
	args := m.Called(ctx, storyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}

func (m *MockStoryStore) List(ctx context.Context, limit, offset int) ([]models.Story, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Story), args.Error(1)
}

// MockNotifier is a testify mock for service.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyConsentStatus(event models.ConsentStatusEvent) {
	m.Called(event)
}
