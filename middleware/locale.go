package middleware

import (
	"strings"

	"placemail/utils"

	"github.com/gofiber/fiber/v2"
)

// LocaleMiddleware detects the user's locale and stores a localizer on the
// request context for notification messages.
func LocaleMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := c.Query("lang")

		if lang == "" {
			lang = c.Cookies("lang")
		}

		if lang == "" {
			acceptLang := c.Get("Accept-Language")
			if strings.HasPrefix(acceptLang, "hi") {
				lang = "hi"
			} else {
				lang = "en"
			}
		}

		if lang != "en" && lang != "hi" {
			lang = "en"
		}

		localizer := utils.GetLocalizer(lang)
		c.Locals("localizer", localizer)
		c.Locals("lang", lang)

		return c.Next()
	}
}
