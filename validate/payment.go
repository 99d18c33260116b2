package validate

import (
	"laundry_service/model"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func CreateIntent() fiber.Handler {
	return body[model.CreateIntentInput](nil)
}

func CreateSource() fiber.Handler {
	return body(func(in *model.CreateSourceInput) {
		in.TransactionId = strings.TrimSpace(in.TransactionId)
		in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	})
}
