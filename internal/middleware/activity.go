package middleware

import (
	"bytes"
	"io"
	"strings"

	"skillforge/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ActivityMiddleware records authenticated requests in the activity
// log. Reads the body up front so handlers still see it. Unauthenticated
// requests are not logged.
func ActivityMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		user := CurrentUser(c)
		if user == nil {
			return
		}

		action := c.Request.Method + " " + c.Request.URL.Path
		// never persist bodies that may carry credentials
		if len(bodyBytes) > 0 && len(bodyBytes) < 1000 && c.Request.Method != "GET" &&
			!strings.Contains(c.Request.URL.Path, "password") {
			action += " " + string(bodyBytes)
		}

		userID := user.ID
		entry := models.ActivityLog{
			UserID:    &userID,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Action:    action,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		_ = db.Create(&entry).Error
	}
}
