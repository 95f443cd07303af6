package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vendaslab/comercial/internal/domain"
	"github.com/vendaslab/comercial/internal/webserver"
	"github.com/vendaslab/comercial/pkg/common"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func registerAuthRoutes() {
	webserver.PubPOST("/auth/register", registerUser)
	webserver.PubPOST("/auth/login", login)
	webserver.ApiPOST("/auth/refresh-token", refreshToken)
}

type registerPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func issueTokens(c echo.Context, username, role string) (*tokenResponse, error) {
	cfg := GetAppContext(c).Config()
	access, err := webserver.CreateAccessToken(cfg, username, role)
	if err != nil {
		return nil, err
	}
	refresh, err := webserver.CreateRefreshToken(cfg, username, role)
	if err != nil {
		return nil, err
	}
	return &tokenResponse{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

func registerUser(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration", nil)
	}
	payload.Username = strings.TrimSpace(payload.Username)
	payload.Email = strings.TrimSpace(payload.Email)
	if payload.Username == "" || payload.Email == "" || payload.Password == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Username, email and password are required", nil)
	}
	if payload.Role == "" {
		payload.Role = "user"
	}
	if payload.Role != "user" && payload.Role != "admin" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Role must be 'user' or 'admin'", nil)
	}

	var dup domain.User
	if err := GetDB(c).Where("username = ? OR email = ?", payload.Username, payload.Email).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_USER", "Username or email already registered", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to hash password", nil)
	}

	user := domain.User{
		ID:        common.UUIDint64(),
		Username:  payload.Username,
		Email:     payload.Email,
		Password:  string(hashed),
		Role:      payload.Role,
		Status:    common.ENABLED,
		LastLogin: time.Now(),
	}
	if err := GetDB(c).Create(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create user", nil)
	}

	tokens, err := issueTokens(c, user.Username, user.Role)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue tokens", nil)
	}
	zap.L().Info("user registered", zap.String("username", user.Username), zap.String("role", user.Role))
	return created(c, tokens)
}

type loginPayload struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse credentials", nil)
	}

	var user domain.User
	err := GetDB(c).Where("username = ?", strings.TrimSpace(payload.Username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect credentials", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", nil)
	}
	if user.Status != common.ENABLED {
		return fail(c, http.StatusUnauthorized, "ACCOUNT_DISABLED", "Account is disabled", nil)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)) != nil {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect credentials", nil)
	}

	GetDB(c).Model(&domain.User{}).Where("id = ?", user.ID).Update("last_login", time.Now())

	tokens, err := issueTokens(c, user.Username, user.Role)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue tokens", nil)
	}
	return ok(c, tokens)
}

// refreshToken issues a fresh token pair for the authenticated operator
func refreshToken(c echo.Context) error {
	username := webserver.UsernameFromContext(c)
	role := webserver.RoleFromContext(c)
	if username == "" {
		return fail(c, http.StatusUnauthorized, "INVALID_TOKEN", "Token subject missing", nil)
	}
	tokens, err := issueTokens(c, username, role)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue tokens", nil)
	}
	return ok(c, tokens)
}
