package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	accessauth "github.com/portal-access/portal-access/internal/auth"
	"github.com/portal-access/portal-access/internal/web/session"
)

const defaultCookieName = "session"

// Config configures the authentication middleware.
type Config struct {
	// Store holds the sessions. Required.
	Store *session.Store
	// CookieName is the session cookie. Default: "session".
	CookieName string
	// Public paths and their sub paths are served without a session.
	Public []string
}

// New returns the authentication middleware.
func New(cfg Config) fiber.Handler {
	if cfg.Store == nil {
		panic("session store is nil")
	}

	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}

	return func(c *fiber.Ctx) error {
		if IsPublic(c, cfg.Public) {
			return c.Next()
		}

		sessionID := c.Cookies(cfg.CookieName)
		if sessionID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": accessauth.MsgUnauthorized})
		}

		data, err := cfg.Store.Read(sessionID)
		if err != nil {
			log.Debug().Err(err).Msg("rejecting request with invalid session")

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": accessauth.MsgUnauthorized})
		}

		accessauth.SetUserID(c, data.UserID)

		return c.Next()
	}
}

// IsPublic checks if the current request targets one of the public paths.
func IsPublic(c *fiber.Ctx, public []string) bool {
	p := strings.ToLower(c.Path())

	for _, prefix := range public {
		base := strings.TrimSuffix(strings.ToLower(prefix), "/")
		if p == base || strings.HasPrefix(p, base+"/") {
			return true
		}
	}

	return false
}
