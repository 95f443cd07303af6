package adminapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/vendaslab/comercial/internal/domain"
	"github.com/vendaslab/comercial/internal/webserver"
	"gorm.io/gorm"
)

func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/export", exportProducts)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiDELETE("/products/:id", deleteProduct)
}

type productPayload struct {
	Description    string     `json:"description"`
	SaleValue      *float64   `json:"sale_value"`
	Barcode        string     `json:"barcode"`
	Section        string     `json:"section"`
	Category       string     `json:"category"`
	InitialStock   *int       `json:"initial_stock"`
	ExpirationDate *time.Time `json:"expiration_date"`
	Image          string     `json:"image"`
}

func (p *productPayload) validate() string {
	p.Description = strings.TrimSpace(p.Description)
	p.Barcode = strings.TrimSpace(p.Barcode)
	p.Section = strings.TrimSpace(p.Section)
	p.Category = strings.TrimSpace(p.Category)
	switch {
	case p.Description == "":
		return "Description is required"
	case p.Barcode == "":
		return "Barcode is required"
	case p.Section == "":
		return "Section is required"
	case p.Category == "":
		return "Category is required"
	case p.SaleValue == nil || *p.SaleValue < 0:
		return "Sale value is required and must be >= 0"
	case p.InitialStock == nil || *p.InitialStock < 0:
		return "Initial stock is required and must be >= 0"
	}
	return ""
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	query := GetDB(c).Model(&domain.Product{})
	if category := strings.TrimSpace(c.QueryParam("category")); category != "" {
		query = substringFilter(query, "category", category)
	}
	if section := strings.TrimSpace(c.QueryParam("section")); section != "" {
		query = substringFilter(query, "section", section)
	}
	if raw := c.QueryParam("value_min"); raw != "" {
		if min, err := strconv.ParseFloat(raw, 64); err == nil {
			query = query.Where("sale_value >= ?", min)
		}
	}
	if raw := c.QueryParam("value_max"); raw != "" {
		if max, err := strconv.ParseFloat(raw, 64); err == nil {
			query = query.Where("sale_value <= ?", max)
		}
	}
	if raw := c.QueryParam("availability"); raw != "" {
		if avail, err := strconv.ParseBool(raw); err == nil {
			if avail {
				query = query.Where("initial_stock > 0")
			} else {
				query = query.Where("initial_stock <= 0")
			}
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", nil)
	}

	var products []domain.Product
	if err := query.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&products).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", nil)
	}
	for i := range products {
		products[i].FillAvailability()
	}
	return paged(c, products, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var product domain.Product
	if err := GetDB(c).First(&product, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", nil)
	}
	product.FillAvailability()
	return ok(c, product)
}

// checkSectionConflict enforces the optional one-product-per-section
// deployment variant, gated by the catalog.unique_section setting.
func checkSectionConflict(c echo.Context, section string, excludeID int64) bool {
	if !GetAppContext(c).GetSettingsBoolValue("catalog", "unique_section") {
		return false
	}
	var dup domain.Product
	query := GetDB(c).Where("section = ?", section)
	if excludeID > 0 {
		query = query.Where("id != ?", excludeID)
	}
	return query.First(&dup).Error == nil
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product parameters", nil)
	}
	if msg := payload.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	var dup domain.Product
	if err := GetDB(c).Where("barcode = ?", payload.Barcode).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_BARCODE", "Product with this barcode already exists", nil)
	}
	if checkSectionConflict(c, payload.Section, 0) {
		return fail(c, http.StatusConflict, "DUPLICATE_SECTION", "A product is already registered in this section", nil)
	}

	product := domain.Product{
		Description:    payload.Description,
		SaleValue:      *payload.SaleValue,
		Barcode:        payload.Barcode,
		Section:        payload.Section,
		Category:       payload.Category,
		InitialStock:   *payload.InitialStock,
		ExpirationDate: payload.ExpirationDate,
		Image:          payload.Image,
	}
	if err := GetDB(c).Create(&product).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", nil)
	}
	product.FillAvailability()
	audit(c, "create_product", fmt.Sprintf("product %d (%s)", product.ID, product.Barcode))
	return created(c, product)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product parameters", nil)
	}
	if msg := payload.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	var product domain.Product
	if err := GetDB(c).First(&product, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", nil)
	}

	var dup domain.Product
	if err := GetDB(c).Where("barcode = ? AND id != ?", payload.Barcode, id).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_BARCODE", "Another product with this barcode already exists", nil)
	}
	if checkSectionConflict(c, payload.Section, id) {
		return fail(c, http.StatusConflict, "DUPLICATE_SECTION", "A product is already registered in this section", nil)
	}

	// mutable fields only
	updates := map[string]interface{}{
		"description":     payload.Description,
		"sale_value":      *payload.SaleValue,
		"barcode":         payload.Barcode,
		"section":         payload.Section,
		"category":        payload.Category,
		"initial_stock":   *payload.InitialStock,
		"expiration_date": payload.ExpirationDate,
		"image":           payload.Image,
	}
	if err := GetDB(c).Model(&product).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", nil)
	}
	GetDB(c).First(&product, id)
	product.FillAvailability()
	audit(c, "update_product", fmt.Sprintf("product %d", id))
	return ok(c, product)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var product domain.Product
	if err := GetDB(c).First(&product, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", nil)
	}
	if err := GetDB(c).Delete(&domain.Product{}, id).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", nil)
	}
	audit(c, "delete_product", fmt.Sprintf("product %d", id))
	return c.NoContent(http.StatusNoContent)
}

type productCSVRow struct {
	ID           int64   `csv:"id"`
	Description  string  `csv:"description"`
	Barcode      string  `csv:"barcode"`
	Section      string  `csv:"section"`
	Category     string  `csv:"category"`
	SaleValue    float64 `csv:"sale_value"`
	InitialStock int     `csv:"initial_stock"`
	Expiration   string  `csv:"expiration_date"`
}

// exportProducts streams the whole catalog as CSV
func exportProducts(c echo.Context) error {
	var products []domain.Product
	if err := GetDB(c).Order("id ASC").Find(&products).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", nil)
	}

	rows := make([]productCSVRow, 0, len(products))
	for _, p := range products {
		row := productCSVRow{
			ID:           p.ID,
			Description:  p.Description,
			Barcode:      p.Barcode,
			Section:      p.Section,
			Category:     p.Category,
			SaleValue:    p.SaleValue,
			InitialStock: p.InitialStock,
		}
		if p.ExpirationDate != nil {
			row.Expiration = p.ExpirationDate.Format("2006-01-02")
		}
		rows = append(rows, row)
	}

	data, err := gocsv.MarshalString(&rows)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to encode CSV", nil)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(data))
}
