package orders

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/vendaslab/comercial/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Item is one requested (product, quantity) pair of an order request
type Item struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Service implements the order placement workflow and the query/mutation
// surface over persisted orders.
type Service struct {
	db   *gorm.DB
	repo Repository
}

// NewService creates an order service bound to db
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, repo: NewGormRepository(db)}
}

// PlaceOrder validates availability, decrements stock, computes line
// subtotals and persists the order aggregate in one transaction. Either
// every requested line is satisfied or nothing is persisted.
//
// Products are loaded with a row lock so that two concurrent placements
// against the same product cannot both read the stock before either
// decrements it. SQLite serializes writers on its own, so the locking
// clause is only applied on postgres.
func (s *Service) PlaceOrder(ctx context.Context, clientID int64, items []Item) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Detail: "order must contain at least one item"}
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, &ValidationError{
				Detail: fmt.Sprintf("quantity for product %d must be a positive integer", item.ProductID),
			}
		}
	}

	var order domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client domain.Client
		if err := tx.First(&client, clientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "client", ID: clientID}
			}
			return errors.Wrap(err, "query client")
		}

		order = domain.Order{ClientID: client.ID, Status: domain.OrderStatusPending}

		for _, item := range items {
			query := tx
			if tx.Dialector.Name() == "postgres" {
				query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
			}

			var product domain.Product
			if err := query.First(&product, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &NotFoundError{Entity: "product", ID: item.ProductID}
				}
				return errors.Wrap(err, "query product")
			}

			if product.InitialStock < item.Quantity {
				return &ConflictError{
					Entity: "product",
					Detail: fmt.Sprintf("insufficient stock for %q: have %d, want %d",
						product.Description, product.InitialStock, item.Quantity),
				}
			}

			if err := tx.Model(&domain.Product{}).
				Where("id = ?", product.ID).
				Update("initial_stock", gorm.Expr("initial_stock - ?", item.Quantity)).Error; err != nil {
				return errors.Wrap(err, "decrement stock")
			}

			// unit price is snapshotted here; later catalog price changes
			// must not affect this line
			subtotal := float64(item.Quantity) * product.SaleValue
			order.Products = append(order.Products, domain.OrderProduct{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				UnitPrice: product.SaleValue,
				Subtotal:  subtotal,
			})
		}

		if err := tx.Create(&order).Error; err != nil {
			return errors.Wrap(err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("client_id", clientID),
		zap.Int("lines", len(order.Products)),
		zap.Float64("total", order.Total()))

	return &order, nil
}

// ListOrders retrieves orders matching the filter
func (s *Service) ListOrders(ctx context.Context, filter Filter) ([]domain.Order, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return rows, nil
}

// GetOrder retrieves one order by id
func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "order", ID: id}
		}
		return nil, errors.Wrap(err, "query order")
	}
	return order, nil
}

// UpdateOrderStatus overwrites the status field. No other field is
// mutable after creation and no transition order is enforced.
func (s *Service) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, &ValidationError{Detail: fmt.Sprintf("invalid order status %q", status)}
	}
	if _, err := s.GetOrder(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, errors.Wrap(err, "update order status")
	}
	return s.GetOrder(ctx, id)
}

// DeleteOrder removes an order and its lines. Decremented product stock
// is not restored; cancellation does not replenish inventory.
func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	if _, err := s.GetOrder(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "delete order")
	}
	zap.L().Info("order deleted", zap.Int64("order_id", id))
	return nil
}
