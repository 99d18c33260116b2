package helper

import (
	"errors"
	"fmt"
	"laundry_service/config"
	"laundry_service/model"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	JwtSecret = []byte(config.Config("JWT_SECRET"))
	TokenTTL  = 24 * time.Hour
)

// Configure applies the token settings loaded at startup.
func Configure(settings config.Settings) {
	if settings.JWTSecret != "" {
		JwtSecret = []byte(settings.JWTSecret)
	}
	if settings.JWTTTL > 0 {
		TokenTTL = settings.JWTTTL
	}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func GenerateAccessToken(tokenClaim model.TokenClaim) (model.TokenData, error) {
	expiresAt := time.Now().Add(TokenTTL)
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["userId"] = tokenClaim.UserId
	claims["email"] = tokenClaim.Email
	claims["role"] = tokenClaim.Role
	claims["exp"] = expiresAt.Unix()

	t, err := token.SignedString(JwtSecret)
	if err != nil {
		return model.TokenData{}, err
	}
	return model.TokenData{AccessToken: t, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}

func ParseToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return JwtSecret, nil
	})
}

// ClaimFromToken reads the identity carried by a validated token.
func ClaimFromToken(token *jwt.Token) (model.TokenClaim, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.TokenClaim{}, errors.New("invalid claims type")
	}
	userId, ok := claims["userId"].(float64)
	if !ok || userId <= 0 {
		return model.TokenClaim{}, errors.New("token has no user")
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return model.TokenClaim{UserId: uint(userId), Email: email, Role: role}, nil
}

// GetUserId returns the authenticated user set by middleware.Protected.
func GetUserId(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userId").(uint); ok {
		return id
	}
	return 0
}

func GetRole(c *fiber.Ctx) string {
	role, _ := c.Locals("role").(string)
	return role
}
