package adminapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vendaslab/comercial/internal/domain"
	"github.com/vendaslab/comercial/internal/orders"
	"github.com/vendaslab/comercial/internal/webserver"
)

func registerOrderRoutes() {
	webserver.ApiGET("/orders", listOrders)
	webserver.ApiGET("/orders/:id", getOrder)
	webserver.ApiPOST("/orders", createOrder)
	webserver.ApiPUT("/orders/:id", updateOrder, webserver.RequireAdmin)
	webserver.ApiDELETE("/orders/:id", deleteOrder, webserver.RequireAdmin)
}

// failOrderError maps workflow errors to their stable HTTP codes.
// Insufficient stock is a 400 on this surface; infrastructure failures
// are reported generically.
func failOrderError(c echo.Context, err error) error {
	var notFound *orders.NotFoundError
	var conflict *orders.ConflictError
	var validation *orders.ValidationError
	switch {
	case errors.As(err, &notFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", notFound.Error(), nil)
	case errors.As(err, &conflict):
		return fail(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", conflict.Error(), nil)
	case errors.As(err, &validation):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", validation.Error(), nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Order operation failed", nil)
	}
}

const dateLayout = "2006-01-02"

func listOrders(c echo.Context) error {
	var filter orders.Filter

	if raw := c.QueryParam("client_id"); raw != "" {
		id, err := parseInt64(raw)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid client_id", nil)
		}
		filter.ClientID = id
	}
	if raw := c.QueryParam("status"); raw != "" {
		status := domain.OrderStatus(raw)
		if !status.Valid() {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", fmt.Sprintf("Invalid status %q", raw), nil)
		}
		filter.Status = status
	}
	if raw := c.QueryParam("start_date"); raw != "" {
		start, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid start_date, expected YYYY-MM-DD", nil)
		}
		filter.StartDate = &start
	}
	if raw := c.QueryParam("end_date"); raw != "" {
		end, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid end_date, expected YYYY-MM-DD", nil)
		}
		filter.EndDate = &end
	}

	rows, err := orders.NewService(GetDB(c)).ListOrders(c.Request().Context(), filter)
	if err != nil {
		return failOrderError(c, err)
	}
	return ok(c, rows)
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	order, err := orders.NewService(GetDB(c)).GetOrder(c.Request().Context(), id)
	if err != nil {
		return failOrderError(c, err)
	}
	return ok(c, order)
}

type orderPayload struct {
	ClientID int64         `json:"client_id"`
	Products []orders.Item `json:"products"`
}

func createOrder(c echo.Context) error {
	var payload orderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order parameters", nil)
	}

	order, err := orders.NewService(GetDB(c)).PlaceOrder(c.Request().Context(), payload.ClientID, payload.Products)
	if err != nil {
		return failOrderError(c, err)
	}
	audit(c, "create_order", fmt.Sprintf("order %d for client %d", order.ID, order.ClientID))
	return created(c, order)
}

type orderUpdatePayload struct {
	Status string `json:"status"`
}

func updateOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload orderUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order parameters", nil)
	}

	order, err := orders.NewService(GetDB(c)).
		UpdateOrderStatus(c.Request().Context(), id, domain.OrderStatus(payload.Status))
	if err != nil {
		return failOrderError(c, err)
	}
	audit(c, "update_order", fmt.Sprintf("order %d status %s", id, payload.Status))
	return ok(c, order)
}

func deleteOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	if err := orders.NewService(GetDB(c)).DeleteOrder(c.Request().Context(), id); err != nil {
		return failOrderError(c, err)
	}
	audit(c, "delete_order", fmt.Sprintf("order %d", id))
	return c.NoContent(http.StatusNoContent)
}
