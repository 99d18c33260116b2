package handler

import (
	"errors"
	"laundry_service/apperror"
	"laundry_service/constants"
	"laundry_service/helper"
	"laundry_service/model"
	"laundry_service/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Register(c *fiber.Ctx) error {
	input := c.Locals("input").(*model.RegisterInput)

	hash, err := helper.HashPassword(input.Password)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, nil)
	}
	user := &model.User{
		Name:                    input.Name,
		Email:                   input.Email,
		Mobile:                  input.Mobile,
		Password:                hash,
		Role:                    constants.ROLE_CUSTOMER,
		Address:                 input.Address,
		AllowEmailNotifications: true,
	}
	optOutEmail := input.AllowEmailNotifications != nil && !*input.AllowEmailNotifications
	if input.AllowEmailNotifications != nil {
		user.AllowEmailNotifications = *input.AllowEmailNotifications
	}
	if input.AllowSMSNotifications != nil {
		user.AllowSMSNotifications = *input.AllowSMSNotifications
	}
	if err := h.users.Create(c.UserContext(), user); err != nil {
		return utils.HandleError(c, err)
	}
	if optOutEmail {
		// gorm sends the column default for false and writes true back into user
		if err := h.users.SetEmailNotifications(c.UserContext(), user.ID, false); err != nil {
			return utils.HandleError(c, err)
		}
		user.AllowEmailNotifications = false
	}

	return h.issueToken(c, fiber.StatusCreated, user)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	input := c.Locals("input").(*model.LoginInput)

	user, err := h.users.FindByEmail(c.UserContext(), input.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.INVALID_CREDENTIALS, nil)
		}
		return utils.HandleError(c, err)
	}
	if !helper.CheckPasswordHash(input.Password, user.Password) {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.INVALID_CREDENTIALS, nil)
	}

	return h.issueToken(c, fiber.StatusOK, user)
}

func (h *Handler) issueToken(c *fiber.Ctx, status int, user *model.User) error {
	token, err := helper.GenerateAccessToken(model.TokenClaim{UserId: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, nil)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    token.AccessToken,
		Expires:  token.ExpiresAt,
		HTTPOnly: true,
		SameSite: "Lax",
		Secure:   h.settings.IsProduction(),
		Path:     "/",
	})

	return utils.SuccessResponse(c, status, fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (h *Handler) Profile(c *fiber.Ctx) error {
	user, err := h.users.FindByID(c.UserContext(), helper.GetUserId(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, user)
}
