package handler

import (
	"errors"
	"net/http"
	"strings"

	"booklist/internal/microservices/http-api/dto"
	"booklist/internal/microservices/http-api/middleware"
	"booklist/internal/microservices/http-api/service"
	"booklist/internal/openlibrary"
	"booklist/internal/web"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService   service.UserService
	likeService   service.LikeService
	reviewService service.ReviewService
	bookService   service.BookService
}

func NewUserHandler(
	userService service.UserService,
	likeService service.LikeService,
	reviewService service.ReviewService,
	bookService service.BookService,
) *UserHandler {
	return &UserHandler{
		userService:   userService,
		likeService:   likeService,
		reviewService: reviewService,
		bookService:   bookService,
	}
}

// RegisterRoutes registers the user directory, owner-only pages and profile routes
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		// Public routes
		users.GET("", h.List)
		users.GET("/:user_id", h.Show)

		// Owner-only routes
		owner := users.Group("/:user_id", middleware.RequireOwner("user_id"))
		owner.GET("/likes", h.Likes)
		owner.GET("/readers", h.Readers)
		owner.GET("/books/:key", h.BookDetails)
		owner.GET("/books/:key/review", h.ReviewForm)
		owner.POST("/books/:key/review", h.AddReview)
	}

	profile := router.Group("/profile", middleware.RequireLogin())
	{
		profile.GET("", h.ProfileForm)
		profile.POST("", h.UpdateProfile)
		profile.POST("/delete", h.Delete)
	}
}

// List shows every user, optionally filtered by username
// GET /users?q=
func (h *UserHandler) List(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	users, err := h.userService.List(c.Request.Context(), query)
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, "users_index", gin.H{"Users": users, "Query": query})
}

// Show renders a user's public profile
// GET /users/:user_id
func (h *UserHandler) Show(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		notFound(c, "That user does not exist.")
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, "user_show", gin.H{
		"User":    user,
		"IsOwner": middleware.Authorize(middleware.CurrentUser(c), id) == nil,
	})
}

// Likes lists the books the owner liked. Books the catalog cannot supply
// are shown as unavailable instead of failing the page.
// GET /users/:user_id/likes
func (h *UserHandler) Likes(c *gin.Context) {
	ident := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	likes, err := h.likeService.ListByUser(ctx, ident.UserID)
	if err != nil {
		renderError(c, err)
		return
	}

	results := h.bookService.BuildBooksFromLikes(ctx, likes)
	render(c, http.StatusOK, "likes", gin.H{
		"Owner":   ident.User,
		"Results": results,
		"Failed":  countFailed(results),
	})
}

// Readers lists what every other user liked
// GET /users/:user_id/readers
func (h *UserHandler) Readers(c *gin.Context) {
	ident := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	likes, err := h.likeService.ListByOtherUsers(ctx, ident.UserID)
	if err != nil {
		renderError(c, err)
		return
	}

	results := h.bookService.BuildBooksFromLikes(ctx, likes)
	readers := make([]dto.ReaderBook, 0, len(likes))
	for i, like := range likes {
		reader := dto.ReaderBook{UserID: like.UserID, Result: results[i]}
		if like.User != nil {
			reader.Username = like.User.Username
		}
		readers = append(readers, reader)
	}

	render(c, http.StatusOK, "readers", gin.H{
		"Owner":   ident.User,
		"Readers": readers,
		"Failed":  countFailed(results),
	})
}

// BookDetails shows a book from the owner's area, with its reviews
// GET /users/:user_id/books/:key
func (h *UserHandler) BookDetails(c *gin.Context) {
	ident := middleware.CurrentUser(c)
	key := openlibrary.NormalizeWorkKey(c.Param("key"))

	book, err := h.bookService.BookDetails(c.Request.Context(), key)
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, "book", gin.H{
		"Book":      book,
		"ReviewURL": ownerBookURL(ident.UserID, key) + "/review",
		"LikeURL":   "/books/book/" + key + "/like",
	})
}

// ReviewForm shows the review form for a book
// GET /users/:user_id/books/:key/review
func (h *UserHandler) ReviewForm(c *gin.Context) {
	ident := middleware.CurrentUser(c)
	key := openlibrary.NormalizeWorkKey(c.Param("key"))
	render(c, http.StatusOK, "review", reviewPage(ownerBookURL(ident.UserID, key), key, dto.ReviewForm{}, nil))
}

// AddReview stores a review and returns to the book
// POST /users/:user_id/books/:key/review
func (h *UserHandler) AddReview(c *gin.Context) {
	ident := middleware.CurrentUser(c)
	key := openlibrary.NormalizeWorkKey(c.Param("key"))
	back := ownerBookURL(ident.UserID, key)

	submitReview(c, h.reviewService, ident, key, back)
}

// ProfileForm shows the profile form filled with the current values
// GET /profile
func (h *UserHandler) ProfileForm(c *gin.Context) {
	user := middleware.CurrentUser(c).User
	render(c, http.StatusOK, "profile", gin.H{
		"Form": dto.ProfileForm{
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
		},
	})
}

// UpdateProfile applies the edit once the current password checks out
// POST /profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	ident := middleware.CurrentUser(c)

	var form dto.ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		form.Password = ""
		render(c, http.StatusBadRequest, "profile", gin.H{
			"Form":   form,
			"Errors": dto.ValidationMessages(err),
		})
		return
	}

	updated, err := h.userService.UpdateProfile(c.Request.Context(), ident.User, form)
	if err != nil {
		form.Password = ""
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			web.SetFlash(c, web.FlashDanger, "Invalid credentials.")
			render(c, http.StatusUnauthorized, "profile", gin.H{"Form": form})
		case errors.Is(err, service.ErrNameInUse):
			web.SetFlash(c, web.FlashDanger, "Username already taken")
			render(c, http.StatusConflict, "profile", gin.H{"Form": form})
		default:
			renderError(c, err)
		}
		return
	}

	web.SetFlash(c, web.FlashSuccess, "Profile updated.")
	redirect(c, "/users/"+formatID(updated.ID))
}

// Delete removes the account with its likes and reviews
// POST /profile/delete
func (h *UserHandler) Delete(c *gin.Context) {
	ident := middleware.CurrentUser(c)

	if err := h.userService.Delete(c.Request.Context(), ident.UserID); err != nil {
		renderError(c, err)
		return
	}

	middleware.ClearSessionCookie(c)
	web.SetFlash(c, web.FlashInfo, "Your account has been deleted.")
	redirect(c, "/signup")
}

// submitReview binds and stores a review for key, then redirects to back.
// Shared by the owner-scoped and the catalog review routes.
func submitReview(c *gin.Context, reviews service.ReviewService, ident *middleware.Identity, key, back string) {
	var form dto.ReviewForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "review", reviewPage(back, key, form, dto.ValidationMessages(err)))
		return
	}

	_, err := reviews.AddReview(c.Request.Context(), ident.UserID, key, form.Review)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyReview):
			render(c, http.StatusBadRequest, "review", reviewPage(back, key, form, []string{"Review is required"}))
		case errors.Is(err, service.ErrInvalidBookKey):
			notFound(c, "We could not find that book in the catalog.")
		default:
			renderError(c, err)
		}
		return
	}
	redirect(c, back)
}

func reviewPage(back, key string, form dto.ReviewForm, errs []string) gin.H {
	return gin.H{
		"Key":     key,
		"Form":    form,
		"Errors":  errs,
		"Action":  back + "/review",
		"BackURL": back,
	}
}

func ownerBookURL(userID int64, key string) string {
	return "/users/" + formatID(userID) + "/books/" + key
}

func countFailed(results []dto.BookResult) int {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}
	return n
}
