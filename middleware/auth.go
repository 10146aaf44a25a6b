// middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const userIDKey = "user_id"

// UserContextMiddleware attaches the acting user: the X-User-ID header set by the
// gateway, or defaultUserID when the header is absent.
func UserContextMiddleware(defaultUserID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get("X-User-ID"))
		if userID == "" {
			userID = defaultUserID
		}
		c.Locals(userIDKey, userID)

		logrus.WithFields(logrus.Fields{
			"user_id":    userID,
			"path":       c.Path(),
			"request_id": c.Locals("requestid"),
		}).Debug("👤 [USER_CTX] request user resolved")
		return c.Next()
	}
}

// UserID returns the acting user attached by UserContextMiddleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}
