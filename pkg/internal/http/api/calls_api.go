package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/museflow/calldesk/pkg/internal/http/exts"
	"github.com/museflow/calldesk/pkg/internal/services"
)

func (h *API) createCall(c *fiber.Ctx) error {
	var data struct {
		DurationMinutes int    `json:"durationMinutes" validate:"omitempty,min=1,max=1440"`
		ModelName       string `json:"modelName" validate:"max=64"`
		ClientName      string `json:"clientName" validate:"max=64"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	summary, err := h.registry.Create(c.Context(), data.DurationMinutes, data.ModelName, data.ClientName)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(summary)
}

func (h *API) endCall(c *fiber.Ctx) error {
	var data struct {
		CallID string `json:"callId" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	if err := h.registry.End(c.Context(), data.CallID); err != nil {
		if errors.Is(err, services.ErrCallNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "unknown callId")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *API) extendCall(c *fiber.Ctx) error {
	var data struct {
		CallID  string `json:"callId" validate:"required"`
		Minutes int    `json:"minutes" validate:"omitempty,min=1,max=720"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	minutes := lo.Ternary(data.Minutes > 0, data.Minutes, 10)
	newEndsAt, err := h.registry.Extend(data.CallID, minutes)
	if err != nil {
		if errors.Is(err, services.ErrCallNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "unknown callId")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"ok":           true,
		"newEndsAt":    newEndsAt.UnixMilli(),
		"newEndsAtISO": newEndsAt.UTC().Format(time.RFC3339),
	})
}

func (h *API) listCalls(c *fiber.Ctx) error {
	return c.JSON(h.registry.List())
}
