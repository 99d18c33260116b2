package handler

import (
	"laundry_service/constants"
	"laundry_service/helper"
	"laundry_service/model"
	"laundry_service/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetBasket(c *fiber.Ctx) error {
	summary, err := h.orders.Basket(c.UserContext(), helper.GetUserId(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, summary)
}

func (h *Handler) AddToBasket(c *fiber.Ctx) error {
	input := c.Locals("input").(*model.BasketItemInput)
	line, err := h.orders.AddToBasket(c.UserContext(), helper.GetUserId(c), *input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessMessage(c, fiber.StatusCreated, constants.BASKET_ITEM_ADDED, line)
}

func (h *Handler) UpdateBasketItem(c *fiber.Ctx) error {
	input := c.Locals("input").(*model.UpdateBasketItemInput)
	line, err := h.orders.UpdateBasketItem(c.UserContext(), helper.GetUserId(c), c.Locals("inputId").(uint), *input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessMessage(c, fiber.StatusOK, constants.BASKET_ITEM_UPDATED, line)
}

func (h *Handler) RemoveBasketItem(c *fiber.Ctx) error {
	if err := h.orders.RemoveBasketItem(c.UserContext(), helper.GetUserId(c), c.Locals("inputId").(uint)); err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessMessage(c, fiber.StatusOK, constants.BASKET_ITEM_REMOVED, nil)
}

func (h *Handler) ClearBasket(c *fiber.Ctx) error {
	if err := h.orders.ClearBasket(c.UserContext(), helper.GetUserId(c)); err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessMessage(c, fiber.StatusOK, constants.BASKET_CLEARED, nil)
}

func (h *Handler) CheckoutBasket(c *fiber.Ctx) error {
	input := c.Locals("input").(*model.CheckoutInput)
	order, err := h.orders.CheckoutBasket(c.UserContext(), helper.GetUserId(c), *input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessMessage(c, fiber.StatusCreated, constants.ORDER_PLACED, order)
}
