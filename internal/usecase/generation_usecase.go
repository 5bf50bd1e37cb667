package usecase

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/iot-telemetry-service/internal/domain"
	"github.com/iot-telemetry-service/internal/generator"
	"github.com/iot-telemetry-service/internal/pkg/errors"
	"github.com/iot-telemetry-service/internal/pkg/validator"
	"github.com/iot-telemetry-service/internal/usecase/dto"
)

// GenerationUseCase synthesizes telemetry record sets from the immutable
// region catalog.
type GenerationUseCase struct {
	catalog        *generator.Catalog
	logger         *zap.Logger
	pointAttempts  int
	maxRegionDraws int
	chunkSize      int
}

func NewGenerationUseCase(
	catalog *generator.Catalog,
	logger *zap.Logger,
	pointAttempts int,
	maxRegionDraws int,
	chunkSize int,
) *GenerationUseCase {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	return &GenerationUseCase{
		catalog:        catalog,
		logger:         logger,
		pointAttempts:  pointAttempts,
		maxRegionDraws: maxRegionDraws,
		chunkSize:      chunkSize,
	}
}

// Generate builds req.Count records in chunks, logging progress per chunk.
// Sampling exhaustion aborts the run with the typed error rather than
// under-filling the requested count.
func (uc *GenerationUseCase) Generate(ctx context.Context, req dto.GenerateRequest) ([]domain.DeviceRecord, error) {
	if err := validator.Validate(&req); err != nil {
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		})
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	sampler := generator.NewSampler(uc.catalog, rng, uc.pointAttempts, uc.maxRegionDraws)
	synth := generator.NewSynthesizer(sampler, rng, generator.FieldConfig{
		BatteryMissRate:    req.BatteryMissRate,
		PressureMissRate:   req.PressureMissRate,
		ForceGPS:           req.ForceGPS,
		ForceAccelerometer: req.ForceAccelerometer,
		WithNotes:          req.WithNotes,
	})

	uc.logger.Info("Starting record generation",
		zap.Int("count", req.Count),
		zap.Float64("battery_miss_rate", req.BatteryMissRate),
		zap.Float64("pressure_miss_rate", req.PressureMissRate),
		zap.Bool("with_notes", req.WithNotes),
	)
	start := time.Now()

	records := make([]domain.DeviceRecord, 0, req.Count)
	for len(records) < req.Count {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunk := uc.chunkSize
		if remaining := req.Count - len(records); remaining < chunk {
			chunk = remaining
		}

		for i := 0; i < chunk; i++ {
			record, err := synth.Synthesize()
			if err != nil {
				uc.logger.Error("Record generation aborted",
					zap.Int("generated", len(records)),
					zap.Error(err))
				return nil, err
			}
			records = append(records, record)
		}

		uc.logger.Debug("Generation progress",
			zap.Int("generated", len(records)),
			zap.Int("requested", req.Count))
	}

	uc.logger.Info("Record generation finished",
		zap.Int("count", len(records)),
		zap.Duration("elapsed", time.Since(start)))

	return records, nil
}
