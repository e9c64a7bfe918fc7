package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront/internal/domain"
	rabbit "storefront/internal/infra/rabbitmq"
	"storefront/internal/notify"
	"storefront/internal/repository"
)

const customerOrdersCacheTTL = 30 * time.Second

// Notifier fans out customer/admin messages for an order event.
// Implemented by the notification dispatcher; delivery is best-effort.
type Notifier interface {
	Notify(ctx context.Context, event notify.Event, order *domain.Order)
}

// OrderService owns order persistence and the side effects of every
// order mutation: back-office events and customer notifications.
// Neither side effect can fail the mutation itself.
type OrderService struct {
	repo        repository.OrderRepository
	notifier    Notifier
	publisher   rabbit.PublisherInterface
	redisClient *redis.Client

	// async controls whether side effects run on their own goroutine.
	// Tests flip it off for determinism.
	async bool
}

func NewOrderService(r repository.OrderRepository, n Notifier, pub rabbit.PublisherInterface) *OrderService {
	return &OrderService{
		repo:      r,
		notifier:  n,
		publisher: pub,
		async:     true,
	}
}

func (s *OrderService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

// PlaceOrder persists a completed checkout and fires the placement side
// effects. Called by the checkout session after payment verification.
func (s *OrderService) PlaceOrder(ctx context.Context, order *domain.Order) error {
	if err := s.repo.Create(ctx, order); err != nil {
		return err
	}

	s.invalidateCustomerCache(ctx, order.Customer.Email)
	s.runSideEffect(func(ctx context.Context) {
		s.publishEvent(ctx, "order.placed", domain.OrderPlacedEvent{
			OrderID:       order.ID,
			CustomerEmail: order.Customer.Email,
			TotalAmount:   order.TotalAmount,
			PaymentMethod: order.PaymentMethod,
			PaymentStatus: order.PaymentStatus,
			CreatedAt:     order.CreatedAt,
		})
		s.notifier.Notify(ctx, notify.Event{Kind: notify.EventOrderPlaced}, order)
	})
	return nil
}

// UpdateOrderStatus is the operator path for moving an order through
// its lifecycle. Terminal statuses are immutable and cancellation is
// only allowed while the order can still be stopped.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, newStatus domain.OrderStatus) (*domain.Order, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("invalid order status %q", newStatus)
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, fmt.Errorf("order %s is already %s", id, current.Status)
	}
	if newStatus == domain.StatusCancelled && !current.CanBeCancelled() {
		return nil, fmt.Errorf("order %s can no longer be cancelled", id)
	}
	oldStatus := current.Status

	updated, err := s.repo.Update(ctx, id, domain.OrderPatch{Status: &newStatus})
	if err != nil {
		return nil, err
	}

	s.invalidateCustomerCache(ctx, updated.Customer.Email)
	s.runSideEffect(func(ctx context.Context) {
		s.publishEvent(ctx, "order.status_changed", domain.OrderStatusChangedEvent{
			OrderID:   updated.ID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
			ChangedAt: updated.UpdatedAt,
		})
		s.notifier.Notify(ctx, notify.Event{Kind: notify.EventStatusChanged, NewStatus: newStatus}, updated)
	})
	return updated, nil
}

// UpdatePaymentStatus records an out-of-band settlement change, e.g. an
// operator marking a Cash on Delivery order as collected.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id string, newStatus domain.PaymentStatus) (*domain.Order, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("invalid payment status %q", newStatus)
	}

	updated, err := s.repo.Update(ctx, id, domain.OrderPatch{PaymentStatus: &newStatus})
	if err != nil {
		return nil, err
	}
	s.invalidateCustomerCache(ctx, updated.Customer.Email)
	return updated, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.FindByID(ctx, id)
}

// GetOrdersByCustomer lists a customer's orders, read through the cache
// when one is configured.
func (s *OrderService) GetOrdersByCustomer(ctx context.Context, email string) ([]domain.Order, error) {
	cacheKey := customerOrdersCacheKey(email)

	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var orders []domain.Order
			if err := json.Unmarshal([]byte(cached), &orders); err == nil {
				return orders, nil
			}
		}
	}

	orders, err := s.repo.FindByCustomerEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(orders); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, customerOrdersCacheTTL)
		}
	}
	return orders, nil
}

func (s *OrderService) publishEvent(ctx context.Context, routingKey string, evt any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, evt); err != nil {
		log.Printf("failed to publish %s event: %v", routingKey, err)
	}
}

func (s *OrderService) runSideEffect(fn func(ctx context.Context)) {
	if s.async {
		go fn(context.Background())
		return
	}
	fn(context.Background())
}

func (s *OrderService) invalidateCustomerCache(ctx context.Context, email string) {
	if s.redisClient == nil {
		return
	}
	s.redisClient.Del(ctx, customerOrdersCacheKey(email))
}

func customerOrdersCacheKey(email string) string {
	return "orders:customer:" + email
}
