package repository

import (
	"context"

	"github.com/iot-telemetry-service/internal/domain"
)

// DeviceRepository persists and queries synthesized telemetry records.
type DeviceRepository interface {
	// EnsureSchema creates the device_data table, the PostGIS extension and
	// the geometry column when missing. Safe to call repeatedly.
	EnsureSchema(ctx context.Context) error

	// InsertBatch writes one batch in a single transaction: every row in the
	// batch is committed or none is.
	InsertBatch(ctx context.Context, records []domain.DeviceRecord, withNotes bool) error

	// BackfillGeometry derives the point geometry from location lon/lat for
	// every row with a valid location. Idempotent; returns affected rows.
	BackfillGeometry(ctx context.Context) (int64, error)

	QueryByAttributes(ctx context.Context, filter domain.DeviceFilter) ([]domain.DeviceRow, error)
	QueryNearby(ctx context.Context, lon, lat, radiusKm float64) ([]domain.NearbyDevice, error)
	QueryAll(ctx context.Context, limit int) ([]domain.DevicePosition, error)

	Count(ctx context.Context) (int64, error)
	Truncate(ctx context.Context) error
}
