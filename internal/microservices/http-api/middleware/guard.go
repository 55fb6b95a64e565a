package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"booklist/internal/web"

	"github.com/gin-gonic/gin"
)

var ErrAccessDenied = errors.New("access unauthorized")

// AccessDeniedMessage is flashed whenever a guard turns a request away.
const AccessDeniedMessage = "Access unauthorized."

// Authorize allows the request only when ident is the owner of targetUserID.
func Authorize(ident *Identity, targetUserID int64) error {
	if ident == nil || ident.UserID != targetUserID {
		return ErrAccessDenied
	}
	return nil
}

// RequireLogin turns anonymous requests away before the handler runs.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			Deny(c)
			return
		}
		c.Next()
	}
}

// RequireOwner only lets the request through when the path parameter param
// names the logged-in user. Unparsable ids are denied.
func RequireOwner(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID, err := strconv.ParseInt(c.Param(param), 10, 64)
		if err != nil {
			Deny(c)
			return
		}
		if err := Authorize(CurrentUser(c), targetID); err != nil {
			Deny(c)
			return
		}
		c.Next()
	}
}

// Deny flashes the access warning, redirects home and stops the chain.
func Deny(c *gin.Context) {
	web.SetFlash(c, web.FlashDanger, AccessDeniedMessage)
	c.Redirect(http.StatusFound, "/")
	c.Abort()
}
