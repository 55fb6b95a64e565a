package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"booklist/internal/microservices/http-api/middleware"
	"booklist/internal/microservices/http-api/service"
	"booklist/internal/web"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// render executes page with the shared layout data filled in.
func render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if ident := middleware.CurrentUser(c); ident != nil {
		data["CurrentUser"] = ident.User
	}
	data["Flashes"] = web.PopFlashes(c)
	c.HTML(status, page, data)
}

// redirect sends the browser on after a form post or a guard decision.
func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// renderError maps a service error onto an error page.
func renderError(c *gin.Context, err error) {
	var upstream *service.UpstreamError
	switch {
	case errors.As(err, &upstream) && upstream.Kind == service.UpstreamNotFound:
		render(c, http.StatusNotFound, "error/not_found", gin.H{
			"Message": "We could not find that book in the catalog.",
		})
	case errors.As(err, &upstream):
		slog.Warn("catalog failure",
			"path", c.Request.URL.Path,
			"book_key", upstream.Key,
			"kind", upstream.Kind.String(),
			"error", upstream.Err,
		)
		render(c, http.StatusBadGateway, "error/catalog_unavailable", gin.H{
			"Message": "The book catalog could not be reached. Please try again shortly.",
		})
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		notFound(c, "That user does not exist.")
	default:
		slog.Error("request failed", "path", c.Request.URL.Path, "error", err)
		render(c, http.StatusInternalServerError, "error/server_error", nil)
	}
}

func notFound(c *gin.Context, message string) {
	render(c, http.StatusNotFound, "error/not_found", gin.H{"Message": message})
}

// userIDParam parses the :user_id path parameter.
func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
