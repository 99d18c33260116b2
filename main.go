package main

import (
	"laundry_service/config"
	"laundry_service/database"
	"laundry_service/events"
	"laundry_service/handler"
	"laundry_service/helper"
	"laundry_service/notify"
	"laundry_service/paymongo"
	"laundry_service/pricing"
	"laundry_service/rdb"
	"laundry_service/router"
	"laundry_service/service"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	settings := config.Load()
	helper.Configure(settings)

	db := database.ConnectDB(settings)

	collab := service.Collaborators{
		Events: events.FromSettings(settings.KafkaBrokers, settings.KafkaTopic),
		Notifier: notify.New(
			notify.NewEmailChannel(notify.SMTPConfig{
				Host:     settings.SMTPHost,
				Port:     settings.SMTPPort,
				Username: settings.SMTPUsername,
				Password: settings.SMTPPassword,
				From:     settings.SMTPFrom,
			}),
			notify.NewSMSChannel(notify.SemaphoreConfig{
				URL:        settings.SemaphoreURL,
				APIKey:     settings.SemaphoreAPIKey,
				SenderName: settings.SemaphoreSenderName,
			}),
		),
	}
	defer collab.Events.Close()
	if client := rdb.Connect(settings); client != nil {
		defer client.Close()
		collab.Locker = rdb.NewRedisLocker(client)
		collab.Broadcaster = rdb.NewRedisBroadcaster(client)
	}

	gateway := paymongo.NewClient(paymongo.Config{
		BaseURL:             settings.PaymongoBaseURL,
		SecretKey:           settings.PaymongoSecretKey,
		Timeout:             settings.PaymongoTimeout,
		StatementDescriptor: settings.StatementDescriptor,
	})

	orders := service.NewOrderService(db, pricing.NewEngine(pricing.DefaultCatalog()), collab, settings.AppName)
	payments := service.NewPaymentService(db, gateway, collab, service.PaymentConfig{
		AppURL:           strings.TrimRight(settings.AppURL, "/"),
		AppName:          settings.AppName,
		WebhookSecret:    settings.PaymongoWebhookSecret,
		RequireSignature: settings.WebhookSignatureRequired(),
	})

	helper.StartPaymentSweepScheduler(payments, settings.PaymentSweepInterval, settings.PaymentSweepStaleAfter)
	defer helper.StopPaymentSweepScheduler()

	app := fiber.New(fiber.Config{
		AppName:   settings.AppName,
		BodyLimit: 4 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Authorization, Accept, Paymongo-Signature",
		MaxAge:       600,
	}))

	router.SetupRoutes(app, handler.New(db, orders, payments, settings))
	log.Fatal(app.Listen(":" + settings.Port))
}
