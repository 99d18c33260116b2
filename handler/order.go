package handler

import (
	"laundry_service/constants"
	"laundry_service/helper"
	"laundry_service/model"
	"laundry_service/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) PlaceOrder(c *fiber.Ctx) error {
	input := c.Locals("input").(*model.PlaceOrderInput)
	order, err := h.orders.PlaceOrder(c.UserContext(), helper.GetUserId(c), *input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessMessage(c, fiber.StatusCreated, constants.ORDER_PLACED, order)
}

func (h *Handler) GetOrders(c *fiber.Ctx) error {
	orders, err := h.orders.ListOrders(c.UserContext(), helper.GetUserId(c), utils.QueryInt(c, "limit", 50))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, orders)
}

func (h *Handler) GetOrder(c *fiber.Ctx) error {
	order, err := h.orders.GetOrder(c.UserContext(), c.Locals("inputId").(uint), helper.GetUserId(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

func (h *Handler) UpdateOrderStatus(c *fiber.Ctx) error {
	input := c.Locals("input").(*model.UpdateOrderStatusInput)
	order, err := h.orders.UpdateStatus(c.UserContext(), c.Locals("inputId").(uint), input.Status)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessMessage(c, fiber.StatusOK, constants.ORDER_STATUS_UPDATED, order)
}
