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

type BookHandler struct {
	bookService   service.BookService
	reviewService service.ReviewService
	likeService   service.LikeService
}

func NewBookHandler(bookService service.BookService, reviewService service.ReviewService, likeService service.LikeService) *BookHandler {
	return &BookHandler{
		bookService:   bookService,
		reviewService: reviewService,
		likeService:   likeService,
	}
}

// RegisterRoutes registers the catalog pages. All of them need a login.
func (h *BookHandler) RegisterRoutes(router *gin.RouterGroup) {
	books := router.Group("/books", middleware.RequireLogin())
	{
		books.GET("/trending", h.Trending)
		books.GET("/search", h.Search)
		books.GET("/book/:key", h.Details)
		books.GET("/book/:key/review", h.ReviewForm)
		books.POST("/book/:key/review", h.AddReview)
		books.POST("/book/:key/like", h.Like)
	}
}

// Trending lists what the catalog reports as trending now
// GET /books/trending
func (h *BookHandler) Trending(c *gin.Context) {
	books, err := h.bookService.Trending(c.Request.Context(), 0)
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, "books_index", gin.H{
		"Heading": "Trending books",
		"Books":   books,
	})
}

// Search queries the catalog by free text and subject. An empty query
// only shows the form.
// GET /books/search?q=&subject=
func (h *BookHandler) Search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	subject := strings.TrimSpace(c.Query("subject"))

	data := gin.H{
		"Heading": "Search books",
		"Search":  true,
		"Query":   term,
		"Subject": subject,
		"Books":   []dto.BookListing{},
	}
	if term == "" && subject == "" {
		render(c, http.StatusOK, "books_index", data)
		return
	}

	books, err := h.bookService.Search(c.Request.Context(), term, subject)
	if err != nil {
		renderError(c, err)
		return
	}
	data["Books"] = books
	render(c, http.StatusOK, "books_index", data)
}

// Details shows a catalog work with its local reviews
// GET /books/book/:key
func (h *BookHandler) Details(c *gin.Context) {
	key := openlibrary.NormalizeWorkKey(c.Param("key"))

	book, err := h.bookService.BookDetails(c.Request.Context(), key)
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, "book", gin.H{
		"Book":      book,
		"ReviewURL": publicBookURL(key) + "/review",
		"LikeURL":   publicBookURL(key) + "/like",
	})
}

// ReviewForm shows the review form
// GET /books/book/:key/review
func (h *BookHandler) ReviewForm(c *gin.Context) {
	key := openlibrary.NormalizeWorkKey(c.Param("key"))
	render(c, http.StatusOK, "review", reviewPage(publicBookURL(key), key, dto.ReviewForm{}, nil))
}

// AddReview stores a review and returns to the book
// POST /books/book/:key/review
func (h *BookHandler) AddReview(c *gin.Context) {
	key := openlibrary.NormalizeWorkKey(c.Param("key"))
	submitReview(c, h.reviewService, middleware.CurrentUser(c), key, publicBookURL(key))
}

// Like adds the book to the caller's likes
// POST /books/book/:key/like
func (h *BookHandler) Like(c *gin.Context) {
	ident := middleware.CurrentUser(c)
	key := openlibrary.NormalizeWorkKey(c.Param("key"))

	_, err := h.likeService.AddLike(c.Request.Context(), ident.UserID, key)
	switch {
	case err == nil:
		web.SetFlash(c, web.FlashSuccess, "Book has been added to your likes.")
	case errors.Is(err, service.ErrAlreadyLiked):
		web.SetFlash(c, web.FlashInfo, "You already like this book.")
	case errors.Is(err, service.ErrInvalidBookKey):
		notFound(c, "We could not find that book in the catalog.")
		return
	default:
		renderError(c, err)
		return
	}
	redirect(c, publicBookURL(key))
}

func publicBookURL(key string) string {
	return "/books/book/" + key
}
