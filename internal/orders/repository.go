package orders

import (
	"context"
	"time"

	"github.com/vendaslab/comercial/internal/domain"
	"gorm.io/gorm"
)

// Filter narrows an order listing. Zero values mean "not supplied";
// supplied filters compose conjunctively. Date bounds are inclusive,
// EndDate covers the whole day.
type Filter struct {
	ClientID  int64
	Status    domain.OrderStatus
	StartDate *time.Time
	EndDate   *time.Time
}

// Repository handles database operations for persisted order aggregates
type Repository interface {
	// List retrieves orders matching the filter, newest first
	List(ctx context.Context, filter Filter) ([]domain.Order, error)

	// GetByID retrieves one order with its lines
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// UpdateStatus overwrites the status field only
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error

	// Delete removes an order and its lines as one unit
	Delete(ctx context.Context, id int64) error
}

// GormRepository is the GORM implementation of Repository
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM-based order repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) List(ctx context.Context, filter Filter) ([]domain.Order, error) {
	query := r.db.WithContext(ctx).Model(&domain.Order{})

	if filter.ClientID > 0 {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		// inclusive upper bound: anything before the next day
		query = query.Where("created_at < ?", filter.EndDate.AddDate(0, 0, 1))
	}

	var rows []domain.Order
	err := query.Preload("Products").Order("id DESC").Find(&rows).Error
	return rows, err
}

func (r *GormRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).Preload("Products").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *GormRepository) Delete(ctx context.Context, id int64) error {
	// lines are removed in the same transaction regardless of whether the
	// backend enforces the FK cascade
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderProduct{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Order{}, id).Error
	})
}
