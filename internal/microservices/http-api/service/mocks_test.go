package service

import (
	"context"
	"time"

	"booklist/internal/microservices/http-api/models"
	"booklist/internal/openlibrary"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, usernameLike string) ([]models.User, error) {
	args := m.Called(ctx, usernameLike)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSessionStore mocks the SessionStore interface
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Save(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error {
	args := m.Called(ctx, sessionID, userID, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionStore) DeleteUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockReviewRepository mocks the ReviewRepository interface
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) ListByBook(ctx context.Context, bookKey string, limit int) ([]models.Review, error) {
	args := m.Called(ctx, bookKey, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

// MockLikeRepository mocks the LikeRepository interface
type MockLikeRepository struct {
	mock.Mock
}

func (m *MockLikeRepository) Create(ctx context.Context, like *models.Like) error {
	args := m.Called(ctx, like)
	return args.Error(0)
}

func (m *MockLikeRepository) ListByUser(ctx context.Context, userID int64) ([]models.Like, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Like), args.Error(1)
}

func (m *MockLikeRepository) ListExcludingUser(ctx context.Context, userID int64) ([]models.Like, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Like), args.Error(1)
}

func (m *MockLikeRepository) Exists(ctx context.Context, userID int64, bookKey string) (bool, error) {
	args := m.Called(ctx, userID, bookKey)
	return args.Bool(0), args.Error(1)
}

// MockCatalog mocks the CatalogClient interface
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) FetchWork(ctx context.Context, key string) (*openlibrary.Work, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openlibrary.Work), args.Error(1)
}

func (m *MockCatalog) FetchAuthor(ctx context.Context, authorKey string) (*openlibrary.Author, error) {
	args := m.Called(ctx, authorKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openlibrary.Author), args.Error(1)
}

func (m *MockCatalog) Trending(ctx context.Context, limit int) ([]openlibrary.Doc, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]openlibrary.Doc), args.Error(1)
}

func (m *MockCatalog) Search(ctx context.Context, q openlibrary.SearchQuery) ([]openlibrary.Doc, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]openlibrary.Doc), args.Error(1)
}
