package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"booklist/internal/metrics"
	"booklist/internal/microservices/http-api/dto"
	"booklist/internal/microservices/http-api/models"
	"booklist/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthService mocks the session-related AuthService methods
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

func init() {
	gin.SetMode(gin.TestMode)
}

func withIdentity(ident *Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ident != nil {
			SetIdentity(c, ident)
		}
		c.Next()
	}
}

func TestSessionMiddleware_ValidCookie(t *testing.T) {
	authService := new(MockAuthService)
	user := &models.User{ID: 7, Username: "alice"}
	claims := &service.Claims{UserID: 7, Username: "alice"}
	authService.On("ResolveSession", mock.Anything, "tok").Return(user, claims, nil)

	router := gin.New()
	router.Use(SessionMiddleware(authService, nil))
	var got *Identity
	router.GET("/", func(c *gin.Context) {
		got = CurrentUser(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tok"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "tok", got.SessionToken)
}

func TestSessionMiddleware_InvalidCookieIsAnonymous(t *testing.T) {
	authService := new(MockAuthService)
	authService.On("ResolveSession", mock.Anything, "stale").Return(nil, nil, service.ErrInvalidSession)

	router := gin.New()
	router.Use(SessionMiddleware(authService, nil))
	called := false
	router.GET("/", func(c *gin.Context) {
		called = true
		assert.Nil(t, CurrentUser(c))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "stale"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.True(t, called)
	assert.Contains(t, w.Header().Get("Set-Cookie"), SessionCookie+"=;")
}

func TestSessionMiddleware_NoCookie(t *testing.T) {
	authService := new(MockAuthService)

	router := gin.New()
	router.Use(SessionMiddleware(authService, nil))
	router.GET("/", func(c *gin.Context) {
		assert.Nil(t, CurrentUser(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	authService.AssertNotCalled(t, "ResolveSession", mock.Anything, mock.Anything)
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name   string
		ident  *Identity
		target int64
		want   error
	}{
		{"anonymous", nil, 7, ErrAccessDenied},
		{"other user", &Identity{UserID: 8}, 7, ErrAccessDenied},
		{"owner", &Identity{UserID: 7}, 7, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.ident, tt.target)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.want))
			}
		})
	}
}

func ownerRouter(ident *Identity, called *bool) *gin.Engine {
	router := gin.New()
	router.Use(withIdentity(ident))
	router.GET("/users/:user_id/likes", RequireOwner("user_id"), func(c *gin.Context) {
		*called = true
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequireOwner_AnonymousIsRedirected(t *testing.T) {
	called := false
	router := ownerRouter(nil, &called)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/7/likes", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.False(t, called, "handler must not run for a denied request")

	var flash bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "flash" && c.Value != "" {
			flash = true
		}
	}
	assert.True(t, flash, "denial must flash a warning")
}

func TestRequireOwner_OtherUserIsRedirected(t *testing.T) {
	called := false
	router := ownerRouter(&Identity{UserID: 8, Username: "bob"}, &called)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/7/likes", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.False(t, called)
}

func TestRequireOwner_UnparsableID(t *testing.T) {
	called := false
	router := ownerRouter(&Identity{UserID: 7}, &called)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/seven/likes", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.False(t, called)
}

func TestRequireOwner_Owner(t *testing.T) {
	called := false
	router := ownerRouter(&Identity{UserID: 7, Username: "alice"}, &called)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/7/likes", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

func TestRequireLogin(t *testing.T) {
	for _, tt := range []struct {
		name  string
		ident *Identity
		code  int
	}{
		{"anonymous", nil, http.StatusFound},
		{"logged in", &Identity{UserID: 1}, http.StatusOK},
	} {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(withIdentity(tt.ident))
			router.GET("/books/trending", RequireLogin(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books/trending", nil))
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestLoginThrottle(t *testing.T) {
	limiter := NewKeyedRateLimiter(2, time.Minute, 2)
	defer limiter.Stop()

	router := gin.New()
	router.Use(LoginThrottle(limiter, nil))
	handled := 0
	handler := func(c *gin.Context) {
		handled++
		c.Status(http.StatusOK)
	}
	router.GET("/login", handler)
	router.POST("/login", handler)

	post := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=a&password=b"))
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, post("10.0.0.1"))
	assert.Equal(t, http.StatusOK, post("10.0.0.1"))
	assert.Equal(t, http.StatusSeeOther, post("10.0.0.1"))
	assert.Equal(t, http.StatusOK, post("10.0.0.2"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, handled)
}

func TestKeyedRateLimiter_SweepEvictsIdleKeys(t *testing.T) {
	limiter := NewKeyedRateLimiter(2, time.Minute, 2)
	defer limiter.Stop()

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	for i := 0; i < 1000; i++ {
		limiter.Allow(fmt.Sprintf("10.1.%d.%d", i/256, i%256))
	}
	require.Equal(t, 1000, limiter.Len())

	clock = clock.Add(defaultIdleTTL / 2)
	assert.True(t, limiter.Allow("10.9.9.9"))
	assert.Equal(t, 0, limiter.Sweep())

	clock = clock.Add(defaultIdleTTL/2 + time.Second)
	assert.Equal(t, 1000, limiter.Sweep())
	assert.Equal(t, 1, limiter.Len())
}

func TestKeyedRateLimiter_EvictedKeyStartsFresh(t *testing.T) {
	limiter := NewKeyedRateLimiter(1, time.Minute, 1)
	defer limiter.Stop()

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))

	clock = clock.Add(defaultIdleTTL + time.Second)
	require.Equal(t, 1, limiter.Sweep())
	assert.True(t, limiter.Allow("10.0.0.1"))
}

func TestKeyedRateLimiter_StopIsIdempotent(t *testing.T) {
	limiter := NewKeyedRateLimiter(1, time.Minute, 1)
	limiter.Stop()
	limiter.Stop()
	assert.True(t, limiter.Allow("10.0.0.1"))
}

func TestNoCache(t *testing.T) {
	router := gin.New()
	router.Use(NoCache())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
	assert.Equal(t, "0", w.Header().Get("Expires"))
}

func TestMetrics_RecordsRouteTemplate(t *testing.T) {
	router := gin.New()
	router.Use(Metrics())
	router.GET("/users/:user_id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/users/:user_id", "418")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/42", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
