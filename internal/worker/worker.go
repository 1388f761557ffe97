package worker

import (
	"context"
	"log"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// ConfirmationWorker consumes OrderCreated events and records order
// confirmations. Processing is idempotent: each event id is handled once even
// when Kafka redelivers.
type ConfirmationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
	logger       *zap.Logger
}

// NewConfirmationWorker creates a new confirmation worker
func NewConfirmationWorker(consumer *broker.Consumer, st *store.Store) *ConfirmationWorker {
	w := &ConfirmationWorker{
		consumer: consumer,
		store:    st,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(w.handleOrderCreated)
	w.eventHandler = eventHandler

	return w
}

func (w *ConfirmationWorker) handleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	w.logger.Info("Order confirmation",
		zap.Int64("order_id", event.OrderID),
		zap.String("customer_email", event.CustomerEmail),
		zap.Int64("total_cents", event.TotalCents),
		zap.Bool("newsletter_opt_in", event.NewsletterOptIn))

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

// Start starts the worker
func (w *ConfirmationWorker) Start(ctx context.Context) error {
	log.Println("Starting confirmation worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *ConfirmationWorker) Stop() error {
	log.Println("Stopping confirmation worker...")
	return w.consumer.Close()
}
