package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"booklist/internal/middleware/auth"
	"booklist/internal/microservices/http-api/dto"
	"booklist/internal/microservices/http-api/models"
	"booklist/internal/microservices/http-api/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNameInUse          = errors.New("username already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid session")
)

// Claims carried by the session cookie. RegisteredClaims.ID is the session id.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Signup(ctx context.Context, form dto.SignupForm) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	StartSession(ctx context.Context, user *models.User) (string, error)
	ResolveSession(ctx context.Context, token string) (*models.User, *Claims, error)
	EndSession(ctx context.Context, token string) error
}

type authService struct {
	userRepo   repository.UserRepository
	sessions   repository.SessionStore
	secret     []byte
	sessionTTL time.Duration
	logger     *slog.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessions repository.SessionStore,
	secret string,
	sessionTTL time.Duration,
	logger *slog.Logger,
) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		userRepo:   userRepo,
		sessions:   sessions,
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Signup registers a new user. A taken username yields ErrNameInUse and
// leaves the existing row untouched.
func (s *authService) Signup(ctx context.Context, form dto.SignupForm) (*models.User, error) {
	username := strings.TrimSpace(form.Username)

	// Check if user exists
	_, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		return nil, ErrNameInUse
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	hashedPassword, err := auth.HashPassword(form.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  username,
		Email:     strings.TrimSpace(form.Email),
		Password:  hashedPassword,
		FirstName: strings.TrimSpace(form.FirstName),
		LastName:  strings.TrimSpace(form.LastName),
	}

	// The unique index still guards against a concurrent signup
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrNameInUse
		}
		return nil, err
	}

	s.logger.Info("user signed up", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate checks a username/password pair.
func (s *authService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lookup username: %w", err)
		}
		auth.CompareDummy(password)
		return nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// StartSession issues a signed session token and registers its id.
func (s *authService) StartSession(ctx context.Context, user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}

	if err := s.sessions.Save(ctx, claims.ID, user.ID, s.sessionTTL); err != nil {
		return "", err
	}
	return token, nil
}

// ResolveSession validates a session token and loads its user.
func (s *authService) ResolveSession(ctx context.Context, token string) (*models.User, *Claims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, nil, ErrInvalidSession
	}

	active, err := s.sessions.Exists(ctx, claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if !active {
		return nil, nil, ErrInvalidSession
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidSession
		}
		return nil, nil, err
	}
	return user, claims, nil
}

// EndSession revokes the session behind token. Unparseable tokens are ignored.
func (s *authService) EndSession(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	return s.sessions.Delete(ctx, claims.ID)
}

func (s *authService) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
