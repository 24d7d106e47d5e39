package messaging

import (
	"context"

	"github.com/pushcola/coupon-indexer/internal/domain"
)

// Publisher defines the interface for publishing events to the message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// Publish sends a chain event to the broker. Publishing the same event twice
	// within the broker's duplicate window stores it once.
	Publish(ctx context.Context, event domain.Event) error
	// Close closes the connection
	Close()
}
