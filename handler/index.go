package handler

import (
	"laundry_service/config"
	"laundry_service/repository"
	"laundry_service/service"

	"gorm.io/gorm"
)

// Handler binds the HTTP routes to the services.
type Handler struct {
	users    *repository.UserRepository
	catalog  *repository.CatalogRepository
	orders   *service.OrderService
	payments *service.PaymentService
	settings config.Settings
}

func New(db *gorm.DB, orders *service.OrderService, payments *service.PaymentService, settings config.Settings) *Handler {
	return &Handler{
		users:    repository.NewUserRepository(db),
		catalog:  repository.NewCatalogRepository(db),
		orders:   orders,
		payments: payments,
		settings: settings,
	}
}
