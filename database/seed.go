package database

import (
	"laundry_service/config"
	"laundry_service/constants"
	"laundry_service/model"
	"log"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var defaultServices = []model.Service{
	{Name: "Wash Only - No Soap", Description: "Washing service without soap and fabric conditioner", Price: decimal.NewFromInt(75), Unit: "kg", Icon: "💧"},
	{Name: "Wash Only - With Soap and Fabric Conditioner", Description: "Washing service with soap and fabric conditioner included", Price: decimal.NewFromInt(100), Unit: "kg", Icon: "🧼"},
	{Name: "Dry Only", Description: "Drying service only", Price: decimal.NewFromInt(75), Unit: "kg", Icon: "🌬️"},
	{Name: "Wash & Dry - Without Soap and Fabric Conditioner", Description: "Complete wash and dry service without soap and fabric conditioner", Price: decimal.NewFromInt(140), Unit: "kg", Icon: "🔄"},
	{Name: "Wash & Dry - With Soap and Fabric Conditioner", Description: "Complete wash and dry service with soap and fabric conditioner", Price: decimal.NewFromInt(170), Unit: "kg", Icon: "✨"},
	{Name: "Full Service - Wash & Dry with Soap, Fold and Fabric Conditioner", Description: "Complete laundry service: wash, dry, fold with soap and fabric conditioner", Price: decimal.NewFromInt(200), Unit: "kg", Icon: "👕"},
	{Name: "Comforter Wash & Dry - With Soap and Fabric Conditioner", Description: "Special comforter washing and drying service with soap and fabric conditioner", Price: decimal.NewFromInt(200), Unit: "kg", Icon: "🛏️"},
}

func SeedData(db *gorm.DB) {
	for _, service := range defaultServices {
		service.Slug = slug.Make(service.Name)
		service.IsActive = true
		if err := db.Where(model.Service{Slug: service.Slug}).FirstOrCreate(&service).Error; err != nil {
			log.Println("failed to seed service:", service.Name, "error:", err)
		}
	}

	email := config.Config("ADMIN_EMAIL")
	password := config.Config("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		log.Println("failed to hash admin password:", err)
		return
	}
	admin := model.User{Name: "Administrator", Email: email, Password: string(hash), Role: constants.ROLE_ADMIN}
	if err := db.Where(model.User{Email: email}).FirstOrCreate(&admin).Error; err != nil {
		log.Println("failed to seed admin:", email, "error:", err)
	}
}
