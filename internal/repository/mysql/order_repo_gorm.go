package mysql

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	result := r.db.WithContext(ctx).Create(order)
	if result.Error != nil {
		log.Printf("order store: create %s: %v", order.ID, result.Error)
		return &domain.StorageError{Op: "create", Err: result.Error}
	}
	return nil
}

// Update merges the patch inside a transaction holding a row lock, so
// concurrent patches on the same id serialize instead of interleaving
// field writes.
func (r *orderRepo) Update(ctx context.Context, id string, patch domain.OrderPatch) (*domain.Order, error) {
	var out domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o domain.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").
			First(&o, "id = ?", id).Error; err != nil {
			return err
		}
		patch.Apply(&o, time.Now())
		if err := tx.Model(&domain.Order{ID: id}).Updates(map[string]any{
			"status":         o.Status,
			"payment_status": o.PaymentStatus,
			"gateway_pay_id": o.GatewayPayID,
			"updated_at":     o.UpdatedAt,
		}).Error; err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		log.Printf("order store: update %s: %v", id, err)
		return nil, &domain.StorageError{Op: "update", Err: err}
	}
	return &out, nil
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		log.Printf("order store: find %s: %v", id, err)
		return nil, &domain.StorageError{Op: "find", Err: err}
	}
	return &o, nil
}

func (r *orderRepo) FindByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error) {
	var out []domain.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_email = ?", email).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		log.Printf("order store: list by customer: %v", err)
		return nil, &domain.StorageError{Op: "list", Err: err}
	}
	return out, nil
}
