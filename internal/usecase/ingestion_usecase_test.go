package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iot-telemetry-service/internal/domain"
	"github.com/iot-telemetry-service/internal/pkg/errors"
	"github.com/iot-telemetry-service/internal/usecase"
)

func validRecords(n int) []domain.DeviceRecord {
	records := make([]domain.DeviceRecord, n)
	for i := range records {
		records[i] = domain.DeviceRecord{
			DeviceID:  fmt.Sprintf("sensor_%05d", i),
			Timestamp: "2024-06-01 12:00:00",
			Location:  domain.Location{Lat: 0.5, Lon: 0.5, Region: "A"},
		}
	}
	return records
}

func TestIngestionUseCase_Batching(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("splits into fixed-size batches with trailing partial", func(t *testing.T) {
		repo := &MockDeviceRepository{}
		uc := usecase.NewIngestionUseCase(repo, nil, nil, logger, 500)

		var batchSizes []int
		repo.On("InsertBatch", ctx, mock.Anything, false).
			Run(func(args mock.Arguments) {
				batchSizes = append(batchSizes, len(args.Get(1).([]domain.DeviceRecord)))
			}).
			Return(nil)

		report, err := uc.Ingest(ctx, validRecords(1250), false)
		require.NoError(t, err)

		assert.Equal(t, []int{500, 500, 250}, batchSizes)
		assert.Equal(t, 1250, report.Committed)
		assert.Equal(t, 0, report.Skipped)
		assert.Empty(t, report.Failure)
		repo.AssertNumberOfCalls(t, "InsertBatch", 3)
	})

	t.Run("empty input yields an empty report", func(t *testing.T) {
		repo := &MockDeviceRepository{}
		uc := usecase.NewIngestionUseCase(repo, nil, nil, logger, 500)

		report, err := uc.Ingest(ctx, nil, false)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Committed)
		assert.Equal(t, 0, report.Skipped)
		repo.AssertNumberOfCalls(t, "InsertBatch", 0)
	})
}

func TestIngestionUseCase_ValidationSkip(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	repo := &MockDeviceRepository{}
	uc := usecase.NewIngestionUseCase(repo, nil, nil, logger, 500)

	records := validRecords(4)
	records[1].DeviceID = ""
	records[3].Timestamp = ""

	var inserted int
	repo.On("InsertBatch", ctx, mock.Anything, false).
		Run(func(args mock.Arguments) {
			inserted = len(args.Get(1).([]domain.DeviceRecord))
		}).
		Return(nil)

	report, err := uc.Ingest(ctx, records, false)
	require.NoError(t, err)

	assert.Equal(t, 2, inserted)
	assert.Equal(t, 2, report.Committed)
	assert.Equal(t, 2, report.Skipped)
}

func TestIngestionUseCase_SingleInvalidRecord(t *testing.T) {
	// One empty device_id among valid records: skip count is exactly 1 and
	// the rest commit.
	logger := zap.NewNop()
	ctx := context.Background()

	repo := &MockDeviceRepository{}
	uc := usecase.NewIngestionUseCase(repo, nil, nil, logger, 500)

	records := validRecords(10)
	records[5].DeviceID = ""

	repo.On("InsertBatch", ctx, mock.Anything, false).Return(nil)

	report, err := uc.Ingest(ctx, records, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 9, report.Committed)
}

func TestIngestionUseCase_PartialFailure(t *testing.T) {
	// A failing batch stops ingestion but never zeroes prior progress.
	logger := zap.NewNop()
	ctx := context.Background()

	repo := &MockDeviceRepository{}
	uc := usecase.NewIngestionUseCase(repo, nil, nil, logger, 500)

	calls := 0
	repo.On("InsertBatch", ctx, mock.Anything, false).
		Return(nil).
		Run(func(args mock.Arguments) { calls++ }).
		Once()
	repo.On("InsertBatch", ctx, mock.Anything, false).
		Return(errors.ErrDatabaseError).
		Run(func(args mock.Arguments) { calls++ })

	report, err := uc.Ingest(ctx, validRecords(1500), false)
	require.Error(t, err)
	require.NotNil(t, report)

	assert.Equal(t, 500, report.Committed)
	assert.Equal(t, 0, report.Skipped)
	assert.NotEmpty(t, report.Failure)
	// Third batch is never attempted after the second fails
	assert.Equal(t, 2, calls)
}

func TestIngestionUseCase_AfterIngest(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("publishes event and invalidates cache on success", func(t *testing.T) {
		repo := &MockDeviceRepository{}
		stream := &MockStreamRepository{}
		cache := &MockCacheRepository{}
		uc := usecase.NewIngestionUseCase(repo, stream, cache, logger, 500)

		repo.On("InsertBatch", ctx, mock.Anything, true).Return(nil)
		stream.On("PublishToStream", ctx, domain.StreamTelemetryIngested, mock.Anything).Return(nil)
		cache.On("InvalidatePrefix", ctx, mock.Anything).Return(nil)

		report, err := uc.Ingest(ctx, validRecords(10), true)
		require.NoError(t, err)
		assert.Equal(t, 10, report.Committed)

		stream.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("skips notifications when nothing committed", func(t *testing.T) {
		repo := &MockDeviceRepository{}
		stream := &MockStreamRepository{}
		cache := &MockCacheRepository{}
		uc := usecase.NewIngestionUseCase(repo, stream, cache, logger, 500)

		records := validRecords(2)
		records[0].DeviceID = ""
		records[1].Timestamp = ""

		report, err := uc.Ingest(ctx, records, false)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Committed)
		assert.Equal(t, 2, report.Skipped)

		stream.AssertNumberOfCalls(t, "PublishToStream", 0)
		cache.AssertNumberOfCalls(t, "InvalidatePrefix", 0)
	})
}
