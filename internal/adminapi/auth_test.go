package adminapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendaslab/comercial/internal/domain"
	"github.com/vendaslab/comercial/pkg/common"
)

func TestRegisterAndLogin(t *testing.T) {
	application := newTestApp(t)

	payload := registerPayload{Username: "operator", Email: "operator@example.com", Password: "s3cret", Role: "admin"}
	rec := invoke(t, application, http.MethodPost, "/auth/register", payload, registerUser, nil, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var tokens tokenResponse
	decodeBody(t, rec, &tokens)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "bearer", tokens.TokenType)

	// password is stored hashed
	var user domain.User
	require.NoError(t, application.DB().Where("username = ?", "operator").First(&user).Error)
	assert.NotEqual(t, "s3cret", user.Password)

	rec = invoke(t, application, http.MethodPost, "/auth/login",
		loginPayload{Username: "operator", Password: "s3cret"}, login, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = invoke(t, application, http.MethodPost, "/auth/login",
		loginPayload{Username: "operator", Password: "wrong"}, login, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterDuplicateUser(t *testing.T) {
	application := newTestApp(t)

	payload := registerPayload{Username: "dupe", Email: "dupe@example.com", Password: "pw"}
	rec := invoke(t, application, http.MethodPost, "/auth/register", payload, registerUser, nil, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = invoke(t, application, http.MethodPost, "/auth/register", payload, registerUser, nil, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp errorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "DUPLICATE_USER", resp.Code)
}

func TestLoginDisabledAccount(t *testing.T) {
	application := newTestApp(t)

	payload := registerPayload{Username: "frozen", Email: "frozen@example.com", Password: "pw"}
	rec := invoke(t, application, http.MethodPost, "/auth/register", payload, registerUser, nil, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NoError(t, application.DB().Model(&domain.User{}).
		Where("username = ?", "frozen").Update("status", common.DISABLED).Error)

	rec = invoke(t, application, http.MethodPost, "/auth/login",
		loginPayload{Username: "frozen", Password: "pw"}, login, nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp errorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "ACCOUNT_DISABLED", resp.Code)
}
