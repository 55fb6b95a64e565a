package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Flash categories, matching the alert styles in the layout.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

const (
	flashCookie  = "flash"
	flashContext = "web.flashes"
	flashMaxAge  = 60
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// SetFlash queues a message. It survives a redirect through a short-lived
// cookie and is also visible to a render in the same request.
func SetFlash(c *gin.Context, category, message string) {
	queue := append(queuedFlashes(c), Flash{Category: category, Message: message})
	c.Set(flashContext, queue)

	raw, err := json.Marshal(queue)
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, base64.URLEncoding.EncodeToString(raw), flashMaxAge, "/", "", false, true)
}

// PopFlashes returns every queued message and clears the cookie.
func PopFlashes(c *gin.Context) []Flash {
	queue := queuedFlashes(c)
	c.Set(flashContext, []Flash{})

	if len(queue) > 0 {
		c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	}
	return queue
}

// queuedFlashes is the request's queue, seeded from the incoming cookie on first use.
func queuedFlashes(c *gin.Context) []Flash {
	if v, ok := c.Get(flashContext); ok {
		if flashes, ok := v.([]Flash); ok {
			return flashes
		}
	}
	value, err := c.Cookie(flashCookie)
	if err != nil || value == "" {
		return nil
	}
	return decodeFlashes(value)
}

func decodeFlashes(value string) []Flash {
	raw, err := base64.URLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}
