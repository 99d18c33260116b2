package validate

import (
	"errors"
	"laundry_service/constants"
	"laundry_service/utils"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

var validate = utils.NewValidator()

func GetById(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		valueKey, err := strconv.ParseUint(c.Params(key), 10, 64)
		if err != nil || valueKey == 0 {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, errors.New("params invalid"))
		}

		c.Locals("inputId", uint(valueKey))
		return c.Next()
	}
}

// body parses and validates the request body into T, then stores it as Locals("input").
func body[T any](normalize func(*T)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input := new(T)
		if err := c.BodyParser(input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_INPUT, err)
		}
		if normalize != nil {
			normalize(input)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ValidationResponse(c, utils.FieldErrors(err))
		}

		c.Locals("input", input)
		return c.Next()
	}
}
