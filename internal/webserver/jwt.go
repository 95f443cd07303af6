package webserver

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/vendaslab/comercial/config"
)

// CreateAccessToken issues a short-lived HS256 token carrying the
// operator identity and role.
func CreateAccessToken(cfg *config.AppConfig, username, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  username,
		"role": role,
		"typ":  "access",
		"exp":  time.Now().Add(time.Duration(cfg.Web.AccessExpire) * time.Minute).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Web.JwtSecret))
}

// CreateRefreshToken issues a long-lived token used only to obtain a new
// token pair.
func CreateRefreshToken(cfg *config.AppConfig, username, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  username,
		"role": role,
		"typ":  "refresh",
		"exp":  time.Now().Add(time.Duration(cfg.Web.RefreshExpire) * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Web.JwtSecret))
}

func claimsFromContext(c echo.Context) jwt.MapClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	return claims
}

// UsernameFromContext returns the authenticated operator name, or ""
func UsernameFromContext(c echo.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		if sub, ok := claims["sub"].(string); ok {
			return sub
		}
	}
	return ""
}

// RoleFromContext returns the authenticated operator role, or ""
func RoleFromContext(c echo.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		if role, ok := claims["role"].(string); ok {
			return role
		}
	}
	return ""
}
