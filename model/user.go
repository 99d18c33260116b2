package model

type User struct {
	DTO
	Name                    string `gorm:"size:120;not null" json:"name"`
	Email                   string `gorm:"size:190;uniqueIndex;not null" json:"email"`
	Mobile                  string `gorm:"size:20" json:"mobile"`
	Password                string `gorm:"not null" json:"-"`
	Role                    string `gorm:"size:20;not null;default:customer" json:"role"`
	Address                 string `json:"address"`
	AllowEmailNotifications bool   `gorm:"not null;default:true" json:"allowEmailNotifications"`
	AllowSMSNotifications   bool   `gorm:"not null;default:false" json:"allowSmsNotifications"`
	LoyaltyPoints           int    `gorm:"not null;default:0" json:"loyaltyPoints"`
}

type RegisterInput struct {
	Name                    string `json:"name" validate:"required,min=2,max=120"`
	Email                   string `json:"email" validate:"required,email,max=190"`
	Mobile                  string `json:"mobile" validate:"omitempty,min=10,max=20"`
	Password                string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirmation    string `json:"passwordConfirmation" validate:"required,eqfield=Password"`
	Address                 string `json:"address" validate:"max=255"`
	AllowEmailNotifications *bool  `json:"allowEmailNotifications"`
	AllowSMSNotifications   *bool  `json:"allowSmsNotifications"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
