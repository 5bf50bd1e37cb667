package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iot-telemetry-service/internal/domain"
	"github.com/iot-telemetry-service/internal/domain/repository"
	"github.com/iot-telemetry-service/internal/pkg/errors"
	"github.com/iot-telemetry-service/internal/pkg/utils"
	"github.com/iot-telemetry-service/internal/pkg/validator"
	"github.com/iot-telemetry-service/internal/usecase/dto"
)

const defaultListLimit = 1000000

// DeviceQueryUseCase answers attribute, radius and bulk listing queries
// over the persisted record set, with a Redis-backed result cache for the
// radius path.
type DeviceQueryUseCase struct {
	deviceRepo repository.DeviceRepository
	cacheRepo  repository.CacheRepository
	logger     *zap.Logger
	cacheTTL   time.Duration
}

func NewDeviceQueryUseCase(
	deviceRepo repository.DeviceRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *DeviceQueryUseCase {
	return &DeviceQueryUseCase{
		deviceRepo: deviceRepo,
		cacheRepo:  cacheRepo,
		logger:     logger,
		cacheTTL:   cacheTTL,
	}
}

// QueryByAttributes runs the typed filter. An empty status set means all
// statuses.
func (uc *DeviceQueryUseCase) QueryByAttributes(ctx context.Context, req dto.QueryRequest) (*dto.QueryResponse, error) {
	if err := validator.Validate(&req); err != nil {
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		})
	}
	if !req.AllRecords && req.MinTemp > req.MaxTemp {
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"cause": "min_temp must not exceed max_temp",
		})
	}

	statuses := req.Statuses
	if len(statuses) == 0 {
		statuses = []string{domain.StatusOK, domain.StatusWarn, domain.StatusError}
	}

	filter := domain.DeviceFilter{
		MinTemp:        req.MinTemp,
		MaxTemp:        req.MaxTemp,
		MinBattery:     req.MinBattery,
		Statuses:       statuses,
		RegionContains: req.RegionContains,
		Limit:          req.Limit,
		Offset:         req.Offset,
		AllRecords:     req.AllRecords,
	}

	start := time.Now()
	rows, err := uc.deviceRepo.QueryByAttributes(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.QueryResponse{
		Rows:      rows,
		Total:     len(rows),
		ElapsedMS: float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

// QueryNearby returns records within radius_km of the center ordered by
// geodesic distance, serving repeated queries from cache.
func (uc *DeviceQueryUseCase) QueryNearby(ctx context.Context, req dto.NearbyRequest) (*dto.NearbyResponse, error) {
	if !utils.ValidateCoordinates(req.Lat, req.Lon) {
		return nil, errors.ErrInvalidCoordinates
	}
	if !utils.ValidateRadius(req.RadiusKm) {
		return nil, errors.ErrInvalidRadius
	}

	cacheKey := fmt.Sprintf("%snearby:%.6f:%.6f:%.2f", queryCachePrefix, req.Lon, req.Lat, req.RadiusKm)

	if uc.cacheRepo != nil {
		if cached, err := uc.cacheRepo.Get(ctx, cacheKey); err == nil && cached != nil {
			var devices []domain.NearbyDevice
			if err := json.Unmarshal(cached, &devices); err == nil {
				return &dto.NearbyResponse{
					Devices: devices,
					Total:   len(devices),
					Cached:  true,
				}, nil
			}
			uc.logger.Warn("Dropping undecodable cache entry", zap.String("key", cacheKey))
		}
	}

	start := time.Now()
	devices, err := uc.deviceRepo.QueryNearby(ctx, req.Lon, req.Lat, req.RadiusKm)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	if uc.cacheRepo != nil {
		if encoded, err := json.Marshal(devices); err == nil {
			if err := uc.cacheRepo.Set(ctx, cacheKey, encoded, uc.cacheTTL); err != nil {
				uc.logger.Warn("Failed to cache nearby result", zap.Error(err))
			}
		}
	}

	return &dto.NearbyResponse{
		Devices:   devices,
		Total:     len(devices),
		ElapsedMS: float64(elapsed.Microseconds()) / 1000.0,
	}, nil
}

// QueryAll lists records that already carry a derived geometry.
func (uc *DeviceQueryUseCase) QueryAll(ctx context.Context, limit int) (*dto.DeviceListResponse, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	cacheKey := fmt.Sprintf("%sall:%d", queryCachePrefix, limit)

	if uc.cacheRepo != nil {
		if cached, err := uc.cacheRepo.Get(ctx, cacheKey); err == nil && cached != nil {
			var devices []domain.DevicePosition
			if err := json.Unmarshal(cached, &devices); err == nil {
				return &dto.DeviceListResponse{
					Devices: devices,
					Total:   len(devices),
				}, nil
			}
		}
	}

	devices, err := uc.deviceRepo.QueryAll(ctx, limit)
	if err != nil {
		return nil, err
	}

	if uc.cacheRepo != nil {
		if encoded, err := json.Marshal(devices); err == nil {
			if err := uc.cacheRepo.Set(ctx, cacheKey, encoded, uc.cacheTTL); err != nil {
				uc.logger.Warn("Failed to cache device listing", zap.Error(err))
			}
		}
	}

	return &dto.DeviceListResponse{
		Devices: devices,
		Total:   len(devices),
	}, nil
}

// BackfillGeometry derives geometry for every persisted record with a
// valid location. Zero affected rows is a valid outcome.
func (uc *DeviceQueryUseCase) BackfillGeometry(ctx context.Context) (int64, error) {
	affected, err := uc.deviceRepo.BackfillGeometry(ctx)
	if err != nil {
		return 0, err
	}

	uc.logger.Info("Geometry backfill finished", zap.Int64("affected_rows", affected))
	return affected, nil
}

func (uc *DeviceQueryUseCase) Count(ctx context.Context) (int64, error) {
	return uc.deviceRepo.Count(ctx)
}

// Truncate clears the whole table and drops the query cache.
func (uc *DeviceQueryUseCase) Truncate(ctx context.Context) error {
	if err := uc.deviceRepo.Truncate(ctx); err != nil {
		return err
	}

	if uc.cacheRepo != nil {
		if err := uc.cacheRepo.InvalidatePrefix(ctx, queryCachePrefix); err != nil {
			uc.logger.Warn("Failed to invalidate query cache after truncate", zap.Error(err))
		}
	}

	return nil
}
