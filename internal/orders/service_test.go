package orders

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendaslab/comercial/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ordertest%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

var barcodeSeq int64

func seedClient(t *testing.T, db *gorm.DB) domain.Client {
	t.Helper()
	n := atomic.AddInt64(&barcodeSeq, 1)
	client := domain.Client{
		Name:  "Charles Ramires",
		Email: fmt.Sprintf("crramiress%d@gmail.com", n),
		Cpf:   fmt.Sprintf("%011d", n),
	}
	require.NoError(t, db.Create(&client).Error)
	return client
}

func seedProduct(t *testing.T, db *gorm.DB, stock int, price float64) domain.Product {
	t.Helper()
	n := atomic.AddInt64(&barcodeSeq, 1)
	product := domain.Product{
		Description:  fmt.Sprintf("widget-%d", n),
		SaleValue:    price,
		Barcode:      fmt.Sprintf("789%010d", n),
		Section:      fmt.Sprintf("A-%d", n),
		Category:     "hardware",
		InitialStock: stock,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func reloadProduct(t *testing.T, db *gorm.DB, id int64) domain.Product {
	t.Helper()
	var product domain.Product
	require.NoError(t, db.First(&product, id).Error)
	return product
}

func TestPlaceOrderDecrementsStockAndComputesTotal(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	client := seedClient(t, db)
	product := seedProduct(t, db, 20, 100.0)

	order, err := svc.PlaceOrder(context.Background(), client.ID, []Item{
		{ProductID: product.ID, Quantity: 5},
	})
	require.NoError(t, err)

	assert.NotZero(t, order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.WithinDuration(t, time.Now(), order.CreatedAt, 5*time.Second)
	require.Len(t, order.Products, 1)
	assert.Equal(t, product.ID, order.Products[0].ProductID)
	assert.Equal(t, 5, order.Products[0].Quantity)
	assert.Equal(t, 100.0, order.Products[0].UnitPrice)
	assert.Equal(t, 500.0, order.Products[0].Subtotal)
	assert.Equal(t, 500.0, order.Total())

	assert.Equal(t, 15, reloadProduct(t, db, product.ID).InitialStock)
}

func TestPlaceOrderMultipleLines(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	client := seedClient(t, db)
	p1 := seedProduct(t, db, 10, 2.5)
	p2 := seedProduct(t, db, 8, 7.0)

	order, err := svc.PlaceOrder(context.Background(), client.ID, []Item{
		{ProductID: p1.ID, Quantity: 4},
		{ProductID: p2.ID, Quantity: 3},
	})
	require.NoError(t, err)

	require.Len(t, order.Products, 2)
	assert.Equal(t, 10.0, order.Products[0].Subtotal)
	assert.Equal(t, 21.0, order.Products[1].Subtotal)
	assert.Equal(t, 31.0, order.Total())
	assert.Equal(t, 6, reloadProduct(t, db, p1.ID).InitialStock)
	assert.Equal(t, 5, reloadProduct(t, db, p2.ID).InitialStock)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	client := seedClient(t, db)
	product := seedProduct(t, db, 3, 10.0)

	_, err := svc.PlaceOrder(context.Background(), client.ID, []Item{
		{ProductID: product.ID, Quantity: 5},
	})
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	assert.Contains(t, err.Error(), "insufficient stock")

	assert.Equal(t, 3, reloadProduct(t, db, product.ID).InitialStock)
}

func TestPlaceOrderRollsBackOnMissingProduct(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	client := seedClient(t, db)
	product := seedProduct(t, db, 10, 5.0)

	_, err := svc.PlaceOrder(context.Background(), client.ID, []Item{
		{ProductID: product.ID, Quantity: 2},
		{ProductID: 99999, Quantity: 1},
	})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	// the first line's in-flight decrement must have been rolled back
	assert.Equal(t, 10, reloadProduct(t, db, product.ID).InitialStock)

	var count int64
	require.NoError(t, db.Model(&domain.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlaceOrderRollsBackOnLateInsufficientStock(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	client := seedClient(t, db)
	p1 := seedProduct(t, db, 10, 5.0)
	p2 := seedProduct(t, db, 1, 5.0)

	_, err := svc.PlaceOrder(context.Background(), client.ID, []Item{
		{ProductID: p1.ID, Quantity: 2},
		{ProductID: p2.ID, Quantity: 5},
	})
	require.Error(t, err)
	assert.True(t, IsConflict(err))

	assert.Equal(t, 10, reloadProduct(t, db, p1.ID).InitialStock)
	assert.Equal(t, 1, reloadProduct(t, db, p2.ID).InitialStock)

	var count int64
	require.NoError(t, db.Model(&domain.OrderProduct{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlaceOrderRejectsInvalidInput(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	client := seedClient(t, db)
	product := seedProduct(t, db, 10, 5.0)

	_, err := svc.PlaceOrder(context.Background(), client.ID, nil)
	assert.True(t, IsValidation(err))

	_, err = svc.PlaceOrder(context.Background(), client.ID, []Item{
		{ProductID: product.ID, Quantity: 0},
	})
	assert.True(t, IsValidation(err))

	_, err = svc.PlaceOrder(context.Background(), client.ID, []Item{
		{ProductID: product.ID, Quantity: -3},
	})
	assert.True(t, IsValidation(err))

	assert.Equal(t, 10, reloadProduct(t, db, product.ID).InitialStock)
}

func TestPlaceOrderUnknownClient(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	product := seedProduct(t, db, 10, 5.0)

	_, err := svc.PlaceOrder(context.Background(), 42424242, []Item{
		{ProductID: product.ID, Quantity: 1},
	})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 10, reloadProduct(t, db, product.ID).InitialStock)
}

func TestUnitPriceIsASnapshot(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	client := seedClient(t, db)
	product := seedProduct(t, db, 10, 100.0)

	order, err := svc.PlaceOrder(context.Background(), client.ID, []Item{
		{ProductID: product.ID, Quantity: 1},
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Update("sale_value", 250.0).Error)

	got, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, got.Products, 1)
	assert.Equal(t, 100.0, got.Products[0].UnitPrice)
	assert.Equal(t, 100.0, got.Products[0].Subtotal)
}

func TestGetOrderIsIdempotent(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	client := seedClient(t, db)
	product := seedProduct(t, db, 10, 5.0)

	order, err := svc.PlaceOrder(context.Background(), client.ID, []Item{
		{ProductID: product.ID, Quantity: 2},
	})
	require.NoError(t, err)

	first, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	second, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetOrderNotFound(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	_, err := svc.GetOrder(context.Background(), 987654)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestListOrdersFilters(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	c1 := seedClient(t, db)
	c2 := seedClient(t, db)
	product := seedProduct(t, db, 100, 1.0)

	o1, err := svc.PlaceOrder(context.Background(), c1.ID, []Item{{ProductID: product.ID, Quantity: 1}})
	require.NoError(t, err)
	o2, err := svc.PlaceOrder(context.Background(), c2.ID, []Item{{ProductID: product.ID, Quantity: 1}})
	require.NoError(t, err)
	_, err = svc.UpdateOrderStatus(context.Background(), o2.ID, domain.OrderStatusCompleted)
	require.NoError(t, err)

	rows, err := svc.ListOrders(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = svc.ListOrders(context.Background(), Filter{ClientID: c1.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, o1.ID, rows[0].ID)

	rows, err = svc.ListOrders(context.Background(), Filter{Status: domain.OrderStatusCompleted})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, o2.ID, rows[0].ID)

	// filters compose conjunctively
	rows, err = svc.ListOrders(context.Background(), Filter{ClientID: c1.ID, Status: domain.OrderStatusCompleted})
	require.NoError(t, err)
	assert.Empty(t, rows)

	// inclusive date bounds covering today match everything
	today := time.Now().Truncate(24 * time.Hour)
	rows, err = svc.ListOrders(context.Background(), Filter{StartDate: &today, EndDate: &today})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// a window ending yesterday matches nothing
	yesterday := today.AddDate(0, 0, -1)
	rows, err = svc.ListOrders(context.Background(), Filter{EndDate: &yesterday})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUpdateOrderStatus(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	client := seedClient(t, db)
	product := seedProduct(t, db, 10, 5.0)

	order, err := svc.PlaceOrder(context.Background(), client.ID, []Item{
		{ProductID: product.ID, Quantity: 1},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateOrderStatus(context.Background(), order.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, updated.Status)

	// no transition order is enforced, any overwrite is allowed
	updated, err = svc.UpdateOrderStatus(context.Background(), order.ID, domain.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, updated.Status)

	_, err = svc.UpdateOrderStatus(context.Background(), order.ID, "shipped")
	assert.True(t, IsValidation(err))

	_, err = svc.UpdateOrderStatus(context.Background(), 87878787, domain.OrderStatusCompleted)
	assert.True(t, IsNotFound(err))
}

func TestDeleteOrderCascadesWithoutRestock(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	client := seedClient(t, db)
	product := seedProduct(t, db, 20, 10.0)

	order, err := svc.PlaceOrder(context.Background(), client.ID, []Item{
		{ProductID: product.ID, Quantity: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, 15, reloadProduct(t, db, product.ID).InitialStock)

	require.NoError(t, svc.DeleteOrder(context.Background(), order.ID))

	_, err = svc.GetOrder(context.Background(), order.ID)
	assert.True(t, IsNotFound(err))

	var lines int64
	require.NoError(t, db.Model(&domain.OrderProduct{}).Where("order_id = ?", order.ID).Count(&lines).Error)
	assert.Zero(t, lines)

	// deleting an order does not replenish inventory
	assert.Equal(t, 15, reloadProduct(t, db, product.ID).InitialStock)

	err = svc.DeleteOrder(context.Background(), order.ID)
	assert.True(t, IsNotFound(err))
}
