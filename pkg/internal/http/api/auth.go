package api

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"

	"github.com/museflow/calldesk/pkg/internal/http/exts"
	"github.com/museflow/calldesk/pkg/internal/services"
)

func managerPassMatches(pass string) bool {
	configured := viper.GetString("security.manager_password")
	return subtle.ConstantTimeCompare([]byte(pass), []byte(configured)) == 1
}

// requireManager gates every mutating operation behind the shared manager
// secret, supplied either directly via the X-Manager-Pass header or as a
// bearer session token previously exchanged for it.
func (h *API) requireManager(c *fiber.Ctx) error {
	if pass := c.Get("X-Manager-Pass"); len(pass) > 0 {
		if managerPassMatches(pass) {
			return c.Next()
		}
		return fiber.NewError(fiber.StatusUnauthorized, "manager pass mismatched")
	}

	if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
		if err := services.ValidateSessionToken(strings.TrimPrefix(header, "Bearer ")); err == nil {
			return c.Next()
		}
	}

	return fiber.NewError(fiber.StatusUnauthorized, "manager pass required")
}

func (h *API) exchangeSessionToken(c *fiber.Ctx) error {
	var data struct {
		Password string `json:"password" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	if !managerPassMatches(data.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "manager pass mismatched")
	}

	tk, err := services.CreateSessionToken()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"token": tk})
}
