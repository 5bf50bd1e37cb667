package geometry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/iot-telemetry-service/internal/domain"
	"github.com/iot-telemetry-service/internal/domain/repository"
	"github.com/iot-telemetry-service/internal/worker"
)

const retryBackoff = 500 * time.Millisecond

// Backfiller derives geometry points for rows that do not have one yet.
type Backfiller interface {
	BackfillGeometry(ctx context.Context) (int64, error)
}

// BackfillWorker listens for ingestion events and populates the geometry
// column for the newly inserted rows.
type BackfillWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	backfiller   Backfiller
	consumerName string
	maxRetries   int
}

func NewBackfillWorker(
	streamRepo repository.StreamRepository,
	backfiller Backfiller,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *BackfillWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	if maxRetries < 1 {
		maxRetries = 1
	}

	return &BackfillWorker{
		BaseWorker:   worker.NewBaseWorker("geometry-backfill", consumerGroup, logger),
		streamRepo:   streamRepo,
		backfiller:   backfiller,
		consumerName: consumerName,
		maxRetries:   maxRetries,
	}
}

// Start consumes ingestion events until the worker is stopped or the
// context is cancelled.
func (w *BackfillWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting BackfillWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int("max_retries", w.maxRetries))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamTelemetryIngested, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	msgChan, err := w.streamRepo.ConsumeStream(ctx, domain.StreamTelemetryIngested, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case msg, ok := <-msgChan:
			if !ok {
				logger.Info("Stream channel closed")
				return nil
			}
			w.handleMessage(ctx, msg)
		}
	}
}

// handleMessage runs one backfill pass for an ingestion event. The message
// is acknowledged even on failure; the outcome is reported on the done
// stream instead of being redelivered forever.
func (w *BackfillWorker) handleMessage(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger()

	event, err := w.parseMessage(msg)
	if err != nil {
		logger.Warn("Failed to parse message, skipping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		_ = w.streamRepo.AckMessage(ctx, domain.StreamTelemetryIngested, w.ConsumerGroup(), msg.ID)
		return
	}

	logger.Info("Processing ingestion event",
		zap.String("batch_id", event.BatchID.String()),
		zap.Int("record_count", event.RecordCount))

	affected, err := w.backfillWithRetry(ctx)

	doneEvent := &domain.GeometryBackfilledEvent{
		BatchID:      event.BatchID,
		AffectedRows: affected,
	}
	if err != nil {
		doneEvent.Error = err.Error()
		logger.Error("Geometry backfill failed",
			zap.String("batch_id", event.BatchID.String()),
			zap.Error(err))
	} else {
		logger.Info("Geometry backfill completed",
			zap.String("batch_id", event.BatchID.String()),
			zap.Int64("affected_rows", affected))
	}

	if err := w.streamRepo.PublishToStream(ctx, domain.StreamGeometryDone, doneEvent); err != nil {
		logger.Error("Failed to publish done event",
			zap.String("batch_id", event.BatchID.String()),
			zap.Error(err))
	}

	if err := w.streamRepo.AckMessage(ctx, domain.StreamTelemetryIngested, w.ConsumerGroup(), msg.ID); err != nil {
		logger.Error("Failed to ack message",
			zap.String("message_id", msg.ID),
			zap.Error(err))
	}
}

func (w *BackfillWorker) backfillWithRetry(ctx context.Context) (int64, error) {
	var lastErr error

	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		affected, err := w.backfiller.BackfillGeometry(ctx)
		if err == nil {
			return affected, nil
		}
		lastErr = err

		w.Logger().Warn("Backfill attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", w.maxRetries),
			zap.Error(err))

		if attempt < w.maxRetries {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
	}

	return 0, fmt.Errorf("backfill failed after %d attempts: %w", w.maxRetries, lastErr)
}

func (w *BackfillWorker) parseMessage(msg domain.StreamMessage) (*domain.IngestCompletedEvent, error) {
	var event domain.IngestCompletedEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return &event, nil
}
