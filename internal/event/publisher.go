// Package event publishes storefront domain events to Kafka.
package event

import (
	"context"
	"log/slog"

	"github.com/okandemir/storefront/internal/domain"
	"github.com/okandemir/storefront/pkg/kafka"
	"github.com/okandemir/storefront/pkg/logger"
)

// Topic names, one per aggregate action.
const (
	TopicUserRegistered = "storefront.user.registered"
	TopicProductCreated = "storefront.product.created"
	TopicProductUpdated = "storefront.product.updated"
	TopicProductDeleted = "storefront.product.deleted"
	TopicProductSold    = "storefront.product.sold"
	TopicReviewCreated  = "storefront.review.created"
)

const source = "storefront"

// Producer is the subset of the Kafka producer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// Publisher emits domain events. Publish failures are logged and never
// propagated; events are best-effort. A nil Publisher is a no-op, so
// the services run without Kafka.
type Publisher struct {
	producer Producer
	logger   *slog.Logger
}

// NewPublisher creates a publisher over the given producer.
func NewPublisher(producer Producer, l *slog.Logger) *Publisher {
	return &Publisher{producer: producer, logger: l}
}

// UserRegistered emits a user.registered event.
func (p *Publisher) UserRegistered(ctx context.Context, user *domain.User) {
	p.publish(ctx, TopicUserRegistered, "user.registered", user.ID, "user", map[string]string{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	})
}

// ProductCreated emits a product.created event.
func (p *Publisher) ProductCreated(ctx context.Context, product *domain.Product) {
	p.publish(ctx, TopicProductCreated, "product.created", product.ID, "product", product)
}

// ProductUpdated emits a product.updated event.
func (p *Publisher) ProductUpdated(ctx context.Context, product *domain.Product) {
	p.publish(ctx, TopicProductUpdated, "product.updated", product.ID, "product", product)
}

// ProductDeleted emits a product.deleted event.
func (p *Publisher) ProductDeleted(ctx context.Context, productID string) {
	p.publish(ctx, TopicProductDeleted, "product.deleted", productID, "product", map[string]string{
		"product_id": productID,
	})
}

// ProductSold emits a product.sold event carrying the quantity.
func (p *Publisher) ProductSold(ctx context.Context, productID string, qty int, salesCount int64) {
	p.publish(ctx, TopicProductSold, "product.sold", productID, "product", map[string]any{
		"product_id":  productID,
		"quantity":    qty,
		"sales_count": salesCount,
	})
}

// ReviewCreated emits a review.created event.
func (p *Publisher) ReviewCreated(ctx context.Context, review *domain.Review, summary *domain.ReviewSummary) {
	p.publish(ctx, TopicReviewCreated, "review.created", review.ProductID, "product", map[string]any{
		"review_id":      review.ID,
		"product_id":     review.ProductID,
		"rating":         review.Rating,
		"average_rating": summary.AverageRating,
		"ratings_count":  summary.RatingsCount,
	})
}

func (p *Publisher) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, data any) {
	if p == nil || p.producer == nil {
		return
	}

	ev, err := kafka.NewEvent(eventType, aggregateID, aggregateType, source, data)
	if err != nil {
		p.logger.ErrorContext(ctx, "build event failed",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		ev.WithCorrelationID(cid)
	}

	if err := p.producer.Publish(ctx, topic, ev); err != nil {
		// Producer already logged the failure; the request proceeds.
		return
	}
}
