package handler_test

import (
	"context"

	"booklist/internal/microservices/http-api/dto"
	"booklist/internal/microservices/http-api/models"
	"booklist/internal/microservices/http-api/service"

	"github.com/stretchr/testify/mock"
)

// MockAuthService mocks service.AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, form dto.SignupForm) (*models.User, error) {
	args := m.Called(ctx, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) StartSession(ctx context.Context, user *models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ResolveSession(ctx context.Context, token string) (*models.User, *service.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.User), args.Get(1).(*service.Claims), args.Error(2)
}

func (m *MockAuthService) EndSession(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockUserService mocks service.UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context, query string) ([]models.User, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, user *models.User, form dto.ProfileForm) (*models.User, error) {
	args := m.Called(ctx, user, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBookService mocks service.BookService
type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) BuildBook(ctx context.Context, key string) (*dto.BookAggregate, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BookAggregate), args.Error(1)
}

func (m *MockBookService) BuildBooksFromLikes(ctx context.Context, likes []models.Like) []dto.BookResult {
	args := m.Called(ctx, likes)
	return args.Get(0).([]dto.BookResult)
}

func (m *MockBookService) BookDetails(ctx context.Context, key string) (*dto.BookAggregate, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BookAggregate), args.Error(1)
}

func (m *MockBookService) Trending(ctx context.Context, limit int) ([]dto.BookListing, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.BookListing), args.Error(1)
}

func (m *MockBookService) Search(ctx context.Context, term, subject string) ([]dto.BookListing, error) {
	args := m.Called(ctx, term, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.BookListing), args.Error(1)
}

// MockReviewService mocks service.ReviewService
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) AddReview(ctx context.Context, userID int64, bookKey, text string) (int64, error) {
	args := m.Called(ctx, userID, bookKey, text)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewService) ListReviews(ctx context.Context, bookKey string, limit int) ([]models.Review, error) {
	args := m.Called(ctx, bookKey, limit)
	return args.Get(0).([]models.Review), args.Error(1)
}

// MockLikeService mocks service.LikeService
type MockLikeService struct {
	mock.Mock
}

func (m *MockLikeService) AddLike(ctx context.Context, userID int64, bookKey string) (int64, error) {
	args := m.Called(ctx, userID, bookKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLikeService) ListByUser(ctx context.Context, userID int64) ([]models.Like, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Like), args.Error(1)
}

func (m *MockLikeService) ListByOtherUsers(ctx context.Context, excludedUserID int64) ([]models.Like, error) {
	args := m.Called(ctx, excludedUserID)
	return args.Get(0).([]models.Like), args.Error(1)
}
