package runner

import (
	"context"

	"github.com/samvad-hq/churl/internal/domain"
	"github.com/samvad-hq/churl/pkg/publishers"
)

// ExchangeRecorder persists executed exchanges.
type ExchangeRecorder interface {
	Record(ex domain.Exchange) error
}

// EventPublisher publishes exchange events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
