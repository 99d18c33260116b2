package handler

import (
	"laundry_service/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetServices(c *fiber.Ctx) error {
	services, err := h.catalog.ListActive(c.UserContext())
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, services)
}

func (h *Handler) GetService(c *fiber.Ctx) error {
	service, err := h.catalog.Get(c.UserContext(), c.Locals("inputId").(uint))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, service)
}

func (h *Handler) GetAddons(c *fiber.Ctx) error {
	addons := h.orders.Pricing().Addons()
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"version": addons.Version(),
		"addons":  addons.List(),
	})
}
