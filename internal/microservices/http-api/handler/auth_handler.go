package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"booklist/internal/microservices/http-api/dto"
	"booklist/internal/microservices/http-api/middleware"
	"booklist/internal/microservices/http-api/models"
	"booklist/internal/microservices/http-api/service"
	"booklist/internal/web"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  service.AuthService
	sessionTTL   time.Duration
	secureCookie bool
}

func NewAuthHandler(authService service.AuthService, sessionTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		sessionTTL:   sessionTTL,
		secureCookie: secureCookie,
	}
}

// RegisterRoutes registers signup, login and logout. throttle guards login posts.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, throttle gin.HandlerFunc) {
	router.GET("/signup", h.SignupForm)
	router.POST("/signup", h.Signup)

	login := router.Group("/login", throttle)
	{
		login.GET("", h.LoginForm)
		login.POST("", h.Login)
	}

	router.GET("/logout", h.Logout)
}

// SignupForm shows the signup form
// GET /signup
func (h *AuthHandler) SignupForm(c *gin.Context) {
	render(c, http.StatusOK, "signup", gin.H{"Form": dto.SignupForm{}})
}

// Signup creates the account and logs the new user in
// POST /signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var form dto.SignupForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "signup", gin.H{
			"Form":   form,
			"Errors": dto.ValidationMessages(err),
		})
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), form)
	if err != nil {
		if errors.Is(err, service.ErrNameInUse) {
			web.SetFlash(c, web.FlashDanger, "Username already taken")
			render(c, http.StatusConflict, "signup", gin.H{"Form": form})
			return
		}
		renderError(c, err)
		return
	}

	if !h.startSession(c, user) {
		return
	}
	redirect(c, "/")
}

// LoginForm shows the login form
// GET /login
func (h *AuthHandler) LoginForm(c *gin.Context) {
	render(c, http.StatusOK, "login", gin.H{"Form": dto.LoginForm{}})
}

// Login checks credentials and starts a session
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "login", gin.H{
			"Form":   dto.LoginForm{Username: form.Username},
			"Errors": dto.ValidationMessages(err),
		})
		return
	}

	user, err := h.authService.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			web.SetFlash(c, web.FlashDanger, "Invalid credentials.")
			render(c, http.StatusUnauthorized, "login", gin.H{"Form": dto.LoginForm{Username: form.Username}})
			return
		}
		renderError(c, err)
		return
	}

	if !h.startSession(c, user) {
		return
	}
	web.SetFlash(c, web.FlashSuccess, fmt.Sprintf("Hello, %s!", user.Username))
	redirect(c, "/")
}

// Logout ends the session
// GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if ident := middleware.CurrentUser(c); ident != nil {
		if err := h.authService.EndSession(c.Request.Context(), ident.SessionToken); err != nil {
			renderError(c, err)
			return
		}
	}
	middleware.ClearSessionCookie(c)
	web.SetFlash(c, web.FlashSuccess, "You have been logged out of your account!")
	redirect(c, "/login")
}

func (h *AuthHandler) startSession(c *gin.Context, user *models.User) bool {
	token, err := h.authService.StartSession(c.Request.Context(), user)
	if err != nil {
		renderError(c, fmt.Errorf("start session for user %d: %w", user.ID, err))
		return false
	}
	middleware.SetSessionCookie(c, token, h.sessionTTL, h.secureCookie)
	return true
}
