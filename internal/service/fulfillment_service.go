package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fulfillmentStore is the persistence surface the fulfillment worker
// needs
type fulfillmentStore interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error
}

type fulfillmentPublisher interface {
	PublishOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error
}

// FulfillmentService consumes domain events off the broker. Digital
// goods ship instantly, so order fulfillment here is marking the order
// paid; license events are recorded for the audit metrics only.
type FulfillmentService struct {
	store  fulfillmentStore
	events fulfillmentPublisher
	logger *zap.Logger
}

// NewFulfillmentService creates a new fulfillment service
func NewFulfillmentService(store fulfillmentStore, events fulfillmentPublisher) *FulfillmentService {
	return &FulfillmentService{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

// HandleOrderCreated marks a freshly created order paid, exactly once
// per event id
func (s *FulfillmentService) HandleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	ctx, span := util.StartSpan(ctx, "FulfillmentService.HandleOrderCreated")
	defer span.End()

	processed, err := s.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		s.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	if err := s.store.UpdateOrderStatus(ctx, event.OrderID, models.OrderStatusPaid); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	util.OrdersFulfilledTotal.Inc()

	paid := &models.OrderPaidEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPaid,
			Timestamp: time.Now(),
		},
		OrderID: event.OrderID,
		UserID:  event.UserID,
	}
	if err := s.events.PublishOrderPaid(ctx, paid); err != nil {
		s.logger.Error("Failed to publish OrderPaid event", zap.Error(err))
	}

	if err := s.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		s.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	s.logger.Info("Order fulfilled", zap.Int64("order_id", event.OrderID))
	return nil
}

// HandleLicenseActivated records a license activation sighting
func (s *FulfillmentService) HandleLicenseActivated(ctx context.Context, event *models.LicenseActivatedEvent) error {
	processed, err := s.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		return nil
	}

	s.logger.Info("License activation observed",
		zap.Int64("user_id", event.UserID),
		zap.Int64("product_id", event.ProductID),
		zap.Int64("log_id", event.LogID))

	if err := s.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		s.logger.Error("Failed to mark event processed", zap.Error(err))
	}
	return nil
}
