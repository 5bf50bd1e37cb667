package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iot-telemetry-service/internal/domain"
	"github.com/iot-telemetry-service/internal/domain/repository"
)

// queryCachePrefix covers every cached query result; dropped whenever the
// persisted set changes.
const queryCachePrefix = "telemetry:query:"

// IngestionUseCase moves record sets into the store in fixed-size
// transactional batches.
type IngestionUseCase struct {
	deviceRepo repository.DeviceRepository
	streamRepo repository.StreamRepository
	cacheRepo  repository.CacheRepository
	logger     *zap.Logger
	batchSize  int
}

func NewIngestionUseCase(
	deviceRepo repository.DeviceRepository,
	streamRepo repository.StreamRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	batchSize int,
) *IngestionUseCase {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &IngestionUseCase{
		deviceRepo: deviceRepo,
		streamRepo: streamRepo,
		cacheRepo:  cacheRepo,
		logger:     logger,
		batchSize:  batchSize,
	}
}

// Ingest validates and persists the records. Records lacking device_id or
// timestamp are counted as skipped and dropped, never retried. A store
// failure stops ingestion but the report keeps everything committed before
// the failing batch; the report is always returned alongside the error.
func (uc *IngestionUseCase) Ingest(ctx context.Context, records []domain.DeviceRecord, withNotes bool) (*domain.IngestReport, error) {
	report := &domain.IngestReport{}
	start := time.Now()

	finish := func() {
		report.Elapsed = time.Since(start)
		report.ElapsedMS = float64(report.Elapsed.Microseconds()) / 1000.0
	}

	batch := make([]domain.DeviceRecord, 0, uc.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := uc.deviceRepo.InsertBatch(ctx, batch, withNotes); err != nil {
			return err
		}
		report.Committed += len(batch)
		batch = batch[:0]
		return nil
	}

	for i := range records {
		record := &records[i]

		if record.DeviceID == "" || record.Timestamp == "" {
			report.Skipped++
			continue
		}

		batch = append(batch, *record)
		if len(batch) >= uc.batchSize {
			if err := flush(); err != nil {
				report.Failure = err.Error()
				finish()
				uc.logger.Error("Ingestion stopped on batch failure",
					zap.Int("committed", report.Committed),
					zap.Int("skipped", report.Skipped),
					zap.Error(err))
				return report, err
			}
		}
	}

	// Trailing partial batch
	if err := flush(); err != nil {
		report.Failure = err.Error()
		finish()
		uc.logger.Error("Ingestion stopped on final batch failure",
			zap.Int("committed", report.Committed),
			zap.Int("skipped", report.Skipped),
			zap.Error(err))
		return report, err
	}

	finish()

	uc.logger.Info("Ingestion finished",
		zap.Int("committed", report.Committed),
		zap.Int("skipped", report.Skipped),
		zap.Duration("elapsed", report.Elapsed))

	uc.afterIngest(ctx, report, withNotes)

	return report, nil
}

// afterIngest notifies the backfill worker and drops stale query results.
// Both are best effort: the records are already committed.
func (uc *IngestionUseCase) afterIngest(ctx context.Context, report *domain.IngestReport, withNotes bool) {
	if report.Committed == 0 {
		return
	}

	if uc.streamRepo != nil {
		event := domain.IngestCompletedEvent{
			BatchID:     uuid.New(),
			RecordCount: report.Committed,
			WithNotes:   withNotes,
			IngestedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		if err := uc.streamRepo.PublishToStream(ctx, domain.StreamTelemetryIngested, event); err != nil {
			uc.logger.Warn("Failed to publish ingest event", zap.Error(err))
		}
	}

	if uc.cacheRepo != nil {
		if err := uc.cacheRepo.InvalidatePrefix(ctx, queryCachePrefix); err != nil {
			uc.logger.Warn("Failed to invalidate query cache", zap.Error(err))
		}
	}
}
