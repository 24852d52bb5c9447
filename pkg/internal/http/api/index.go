package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/museflow/calldesk/pkg/internal/services"
)

type API struct {
	registry *services.CallRegistry
}

func MapAPIs(app *fiber.App, baseURL string, registry *services.CallRegistry) {
	h := &API{registry: registry}

	api := app.Group(baseURL).Name("API")
	{
		api.Get("/ping", h.ping)
		api.Post("/auth", h.exchangeSessionToken)

		api.Get("/calls", h.requireManager, h.listCalls)
		api.Post("/create-call", h.requireManager, h.createCall)
		api.Post("/end-call", h.requireManager, h.endCall)
		api.Post("/extend-call", h.requireManager, h.extendCall)
	}
}
