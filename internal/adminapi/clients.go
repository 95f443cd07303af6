package adminapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vendaslab/comercial/internal/domain"
	"github.com/vendaslab/comercial/internal/webserver"
	"gorm.io/gorm"
)

func registerClientRoutes() {
	webserver.ApiGET("/clients", listClients)
	webserver.ApiGET("/clients/:id", getClient)
	webserver.ApiPOST("/clients", createClient)
	webserver.ApiPUT("/clients/:id", updateClient)
	webserver.ApiDELETE("/clients/:id", deleteClient)
}

type clientPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Cpf   string `json:"cpf"`
}

func (p *clientPayload) validate() string {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Cpf = strings.TrimSpace(p.Cpf)
	switch {
	case p.Name == "":
		return "Name is required"
	case p.Email == "" || !strings.Contains(p.Email, "@"):
		return "A valid email is required"
	case len(p.Cpf) != 11:
		return "CPF must be exactly 11 digits"
	}
	return ""
}

// substringFilter applies a case-insensitive LIKE on column
func substringFilter(db *gorm.DB, column, value string) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Where(column+" ILIKE ?", "%"+value+"%")
	}
	return db.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(value)+"%")
}

func listClients(c echo.Context) error {
	page, pageSize := parsePagination(c)

	query := GetDB(c).Model(&domain.Client{})
	if name := strings.TrimSpace(c.QueryParam("name")); name != "" {
		query = substringFilter(query, "name", name)
	}
	if email := strings.TrimSpace(c.QueryParam("email")); email != "" {
		query = substringFilter(query, "email", email)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query clients", nil)
	}

	var clients []domain.Client
	if err := query.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&clients).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query clients", nil)
	}
	return paged(c, clients, total, page, pageSize)
}

func getClient(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID", nil)
	}
	var client domain.Client
	if err := GetDB(c).First(&client, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CLIENT_NOT_FOUND", "Client not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query client", nil)
	}
	return ok(c, client)
}

func createClient(c echo.Context) error {
	var payload clientPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse client parameters", nil)
	}
	if msg := payload.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	var dup domain.Client
	if err := GetDB(c).Where("email = ? OR cpf = ?", payload.Email, payload.Cpf).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_CLIENT", "Client with this email or CPF already exists", nil)
	}

	client := domain.Client{
		Name:  payload.Name,
		Email: payload.Email,
		Cpf:   payload.Cpf,
	}
	if err := GetDB(c).Create(&client).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create client", nil)
	}
	audit(c, "create_client", fmt.Sprintf("client %d (%s)", client.ID, client.Email))
	return created(c, client)
}

func updateClient(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID", nil)
	}
	var payload clientPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse client parameters", nil)
	}
	if msg := payload.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	var client domain.Client
	if err := GetDB(c).First(&client, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CLIENT_NOT_FOUND", "Client not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query client", nil)
	}

	var dup domain.Client
	if err := GetDB(c).Where("(email = ? OR cpf = ?) AND id != ?", payload.Email, payload.Cpf, id).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_CLIENT", "Another client with this email or CPF already exists", nil)
	}

	// mutable fields only
	updates := map[string]interface{}{
		"name":  payload.Name,
		"email": payload.Email,
		"cpf":   payload.Cpf,
	}
	if err := GetDB(c).Model(&client).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update client", nil)
	}
	GetDB(c).First(&client, id)
	audit(c, "update_client", fmt.Sprintf("client %d", id))
	return ok(c, client)
}

func deleteClient(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID", nil)
	}
	var client domain.Client
	if err := GetDB(c).First(&client, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CLIENT_NOT_FOUND", "Client not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query client", nil)
	}
	if err := GetDB(c).Delete(&domain.Client{}, id).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete client", nil)
	}
	audit(c, "delete_client", fmt.Sprintf("client %d", id))
	return c.NoContent(http.StatusNoContent)
}
