package utils

import (
	"errors"
	"laundry_service/apperror"
	"laundry_service/constants"
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "http").Logger()

func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	var errMsg interface{}
	if err != nil {
		errMsg = err.Error()
	}
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"errors":  errMsg,
	})
}

func ValidationResponse(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"status":  "error",
		"message": constants.INVALID_INPUT,
		"errors":  fields,
	})
}

func SuccessResponse(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

func SuccessMessage(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

// HandleError writes err using the response envelope. Only validation, not found
// and state messages reach the caller; gateway and internal causes are logged.
func HandleError(c *fiber.Ctx, err error) error {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, nil)
	}
	status := apperror.HTTPStatus(err)
	switch appErr.Kind {
	case apperror.Validation:
		if len(appErr.Fields) > 0 {
			return c.Status(status).JSON(fiber.Map{
				"status":  "error",
				"message": appErr.Message,
				"errors":  appErr.Fields,
			})
		}
		return ErrorResponse(c, status, appErr.Message, nil)
	case apperror.NotFound, apperror.State, apperror.Conflict:
		return ErrorResponse(c, status, appErr.Message, nil)
	case apperror.Gateway:
		logger.Warn().Err(err).Str("path", c.Path()).Msg("gateway failure")
		return ErrorResponse(c, status, constants.ERROR_GATEWAY, nil)
	default:
		logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return ErrorResponse(c, status, constants.ERROR_INTERNAL_ERROR, nil)
	}
}

// QueryInt reads a positive integer query value, falling back when absent or invalid.
func QueryInt(c *fiber.Ctx, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
