package repository

import (
	"context"

	"github.com/iot-telemetry-service/internal/domain"
)

// StreamRepository moves events between the API and the backfill worker
// over Redis Streams.
type StreamRepository interface {
	CreateConsumerGroup(ctx context.Context, stream, group string) error
	ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error)
	AckMessage(ctx context.Context, stream, group, messageID string) error
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
