package adminapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vendaslab/comercial/internal/app"
	"github.com/vendaslab/comercial/internal/domain"
	"github.com/vendaslab/comercial/internal/webserver"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterRoutes attaches every admin API route to the web server.
// webserver.Init must have been called first.
func RegisterRoutes() {
	registerAuthRoutes()
	registerClientRoutes()
	registerProductRoutes()
	registerOrderRoutes()
}

// GetDB returns the request-scoped database handle
func GetDB(c echo.Context) *gorm.DB {
	return c.Get(webserver.ContextKeyDB).(*gorm.DB)
}

// GetAppContext returns the application context
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.ContextKeyApp).(app.AppContext)
}

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Detail  interface{} `json:"detail,omitempty"`
}

// ListResponse wraps a paged listing
type ListResponse struct {
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, errorResponse{Code: code, Message: message, Detail: detail})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, ListResponse{Data: rows, Total: total, Page: page, PageSize: pageSize})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.QueryParam("perPage"))
	if pageSize < 1 || pageSize > 500 {
		pageSize = 20
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// audit records a mutating API call in the operation log. Failures only
// log a warning, the request outcome is unaffected.
func audit(c echo.Context, action, desc string) {
	entry := domain.SysOprLog{
		OprName:   webserver.UsernameFromContext(c),
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	}
	if err := GetDB(c).Create(&entry).Error; err != nil {
		zap.L().Warn("failed to write operation log", zap.Error(err))
	}
}
