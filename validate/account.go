package validate

import (
	"laundry_service/model"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func Register() fiber.Handler {
	return body(func(in *model.RegisterInput) {
		in.Name = strings.TrimSpace(in.Name)
		in.Email = strings.ToLower(strings.TrimSpace(in.Email))
		in.Mobile = strings.TrimSpace(in.Mobile)
	})
}

func Login() fiber.Handler {
	return body(func(in *model.LoginInput) {
		in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	})
}
