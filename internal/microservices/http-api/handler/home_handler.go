package handler

import (
	"net/http"

	"booklist/internal/microservices/http-api/middleware"

	"github.com/gin-gonic/gin"
)

// Home renders the landing page, which differs for anonymous visitors.
// GET /
func Home(c *gin.Context) {
	if middleware.CurrentUser(c) == nil {
		render(c, http.StatusOK, "home_anon", nil)
		return
	}
	render(c, http.StatusOK, "home", nil)
}
