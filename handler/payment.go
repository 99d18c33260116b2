package handler

import (
	"errors"
	"laundry_service/constants"
	"laundry_service/helper"
	"laundry_service/model"
	"laundry_service/paymongo"
	"laundry_service/service"
	"laundry_service/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetPaymentMethods(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, fiber.StatusOK, h.payments.Methods())
}

func (h *Handler) CreatePaymentIntent(c *fiber.Ctx) error {
	input := c.Locals("input").(*model.CreateIntentInput)
	txn, err := h.payments.CreateIntent(c.UserContext(), helper.GetUserId(c), input.OrderId)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessMessage(c, fiber.StatusOK, constants.PAYMENT_INTENT_CREATED, fiber.Map{
		"transactionId":   txn.TransactionId,
		"paymentIntentId": txn.PaymentIntentId,
		"clientKey":       txn.ClientKey,
		"publicKey":       h.settings.PaymongoPublicKey,
		"amount":          txn.Amount,
		"currency":        txn.Currency,
		"status":          txn.Status,
	})
}

func (h *Handler) CreatePaymentSource(c *fiber.Ctx) error {
	input := c.Locals("input").(*model.CreateSourceInput)
	txn, err := h.payments.CreateSource(c.UserContext(), helper.GetUserId(c), input.TransactionId, input.Type)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessMessage(c, fiber.StatusOK, constants.PAYMENT_SOURCE_CREATED, fiber.Map{
		"transactionId": txn.TransactionId,
		"sourceId":      txn.SourceId,
		"checkoutUrl":   txn.CheckoutUrl,
		"status":        txn.Status,
	})
}

func (h *Handler) CheckPaymentStatus(c *fiber.Ctx) error {
	txn, err := h.payments.CheckStatus(c.UserContext(), helper.GetUserId(c), c.Params("transactionId"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, txn)
}

func (h *Handler) ProcessPaymentSource(c *fiber.Ctx) error {
	txn, err := h.payments.ProcessSource(c.UserContext(), helper.GetUserId(c), c.Params("transactionId"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, txn)
}

// PaymentWebhook answers 400 for deliveries that can never succeed and 500 for
// failures the provider should retry.
func (h *Handler) PaymentWebhook(c *fiber.Ctx) error {
	result, err := h.payments.HandleWebhook(c.UserContext(), c.Body(), c.Get(paymongo.SignatureHeader))
	switch {
	case errors.Is(err, paymongo.ErrInvalidSignature), errors.Is(err, paymongo.ErrMissingSignature):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.WEBHOOK_INVALID_SIGNATURE, nil)
	case errors.Is(err, paymongo.ErrInvalidPayload):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.WEBHOOK_INVALID_PAYLOAD, nil)
	case err != nil:
		return utils.HandleError(c, err)
	}

	message := constants.WEBHOOK_PROCESSED
	if result.Outcome == service.WebhookNoMatch {
		message = constants.WEBHOOK_NO_MATCH
	}
	return utils.SuccessMessage(c, fiber.StatusOK, message, result)
}
