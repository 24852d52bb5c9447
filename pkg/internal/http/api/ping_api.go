package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"

	"github.com/museflow/calldesk/pkg"
)

func (h *API) ping(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ok":      true,
		"domain":  viper.GetString("calling.endpoint"),
		"version": pkg.AppVersion,
	})
}
