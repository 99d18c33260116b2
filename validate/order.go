package validate

import (
	"laundry_service/model"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func AddBasketItem() fiber.Handler {
	return body(func(in *model.BasketItemInput) {
		in.PickupAddress = strings.TrimSpace(in.PickupAddress)
	})
}

func UpdateBasketItem() fiber.Handler {
	return body[model.UpdateBasketItemInput](nil)
}

func Checkout() fiber.Handler {
	return body(func(in *model.CheckoutInput) {
		in.PromoCode = strings.TrimSpace(in.PromoCode)
	})
}

func PlaceOrder() fiber.Handler {
	return body(func(in *model.PlaceOrderInput) {
		in.PickupAddress = strings.TrimSpace(in.PickupAddress)
		in.PromoCode = strings.TrimSpace(in.PromoCode)
	})
}

func UpdateOrderStatus() fiber.Handler {
	return body(func(in *model.UpdateOrderStatusInput) {
		in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	})
}
