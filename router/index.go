package router

import (
	"laundry_service/handler"
	"laundry_service/middleware"
	"laundry_service/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, h *handler.Handler) {
	authLimiter := middleware.NewRateLimiter(10, 5)
	webhookLimiter := middleware.NewRateLimiter(600, 60)

	api := app.Group("/api")
	v1 := api.Group("/v1")

	auth := v1.Group("/auth")
	auth.Post("/register", authLimiter.Limit(), validate.Register(), h.Register)
	auth.Post("/login", authLimiter.Limit(), validate.Login(), h.Login)
	auth.Get("/profile", middleware.Protected(), h.Profile)

	services := v1.Group("/services")
	services.Get("/", h.GetServices)
	services.Get("/:serviceId", validate.GetById("serviceId"), h.GetService)
	v1.Get("/addons", h.GetAddons)

	basket := v1.Group("/basket", middleware.Protected())
	basket.Get("/", h.GetBasket)
	basket.Post("/", validate.AddBasketItem(), h.AddToBasket)
	basket.Delete("/", h.ClearBasket)
	basket.Post("/checkout", validate.Checkout(), h.CheckoutBasket)
	basket.Put("/:itemId", validate.GetById("itemId"), validate.UpdateBasketItem(), h.UpdateBasketItem)
	basket.Delete("/:itemId", validate.GetById("itemId"), h.RemoveBasketItem)

	orders := v1.Group("/orders", middleware.Protected())
	orders.Post("/", validate.PlaceOrder(), h.PlaceOrder)
	orders.Get("/", h.GetOrders)
	orders.Get("/:orderId", validate.GetById("orderId"), h.GetOrder)
	orders.Patch("/:orderId/status", middleware.RequireAdmin(), validate.GetById("orderId"), validate.UpdateOrderStatus(), h.UpdateOrderStatus)

	// the provider calls the webhook without a user token
	v1.Post("/payments/webhook", webhookLimiter.Limit(), h.PaymentWebhook)

	payments := v1.Group("/payments", middleware.Protected())
	payments.Get("/methods", h.GetPaymentMethods)
	payments.Post("/create-intent", validate.CreateIntent(), h.CreatePaymentIntent)
	payments.Post("/create-source", validate.CreateSource(), h.CreatePaymentSource)
	payments.Get("/:transactionId/status", h.CheckPaymentStatus)
	payments.Post("/:transactionId/process", h.ProcessPaymentSource)

	app.Get("/payment/success", h.PaymentSuccessPage)
	app.Get("/payment/failed", h.PaymentFailedPage)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/payments/:transactionId", middleware.Protected(), websocket.New(h.PaymentStatusSocket))
}
