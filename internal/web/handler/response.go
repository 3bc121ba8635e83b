package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Error writes a JSON error body with status.
func Error(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// MarkStale sets HeaderStaleCache when invalidation of the changed entry failed.
func MarkStale(c *fiber.Ctx, invalidateErr error) {
	if invalidateErr != nil {
		c.Set(HeaderStaleCache, "true")
	}
}

// ParamID parses the named route parameter as a positive id.
func ParamID(c *fiber.Ctx, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return id, true
}
