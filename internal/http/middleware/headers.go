package middleware

import "github.com/gofiber/fiber/v2"

// NoSniff stops browsers from guessing a content type other than the declared one.
func NoSniff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		return c.Next()
	}
}
