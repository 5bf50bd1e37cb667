package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/iot-telemetry-service/internal/domain"
	"github.com/iot-telemetry-service/internal/domain/repository"
	"github.com/iot-telemetry-service/internal/pkg/errors"
)

type deviceRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewDeviceRepository(db *DB) repository.DeviceRepository {
	return &deviceRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// EnsureSchema bootstraps the device_data table, the PostGIS extension and
// the geometry column. Every statement is conditional, so repeated calls
// are no-ops.
func (r *deviceRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS device_data (
			id BIGSERIAL PRIMARY KEY,
			device_id TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			location JSONB NOT NULL,
			data JSONB NOT NULL,
			notes TEXT
		)`,
		`CREATE EXTENSION IF NOT EXISTS postgis`,
		`DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1
				FROM information_schema.columns
				WHERE table_name = 'device_data' AND column_name = 'geom'
			) THEN
				ALTER TABLE device_data ADD COLUMN geom geometry(Point, 4326);
			END IF;
		END $$`,
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			r.logger.Error("Failed to ensure device_data schema", zap.Error(err))
			return errors.ErrDatabaseError.WithDetails(map[string]interface{}{
				"cause": err.Error(),
			})
		}
	}

	return nil
}

// InsertBatch writes one batch inside a single transaction. The location
// and data documents are stored as JSONB so schema evolution inside them
// needs no migration.
func (r *deviceRepository) InsertBatch(ctx context.Context, records []domain.DeviceRecord, withNotes bool) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin batch transaction", zap.Error(err))
		return errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		})
	}
	defer tx.Rollback()

	insertSQL := `
		INSERT INTO device_data (device_id, timestamp, location, data)
		VALUES ($1, $2, $3, $4)
	`
	if withNotes {
		insertSQL = `
			INSERT INTO device_data (device_id, timestamp, location, data, notes)
			VALUES ($1, $2, $3, $4, $5)
		`
	}

	stmt, err := tx.PreparexContext(ctx, insertSQL)
	if err != nil {
		r.logger.Error("Failed to prepare batch insert", zap.Error(err))
		return errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		})
	}
	defer stmt.Close()

	for i := range records {
		record := &records[i]

		location, err := json.Marshal(record.Location)
		if err != nil {
			return fmt.Errorf("marshal location: %w", err)
		}
		data, err := json.Marshal(record.Data)
		if err != nil {
			return fmt.Errorf("marshal data: %w", err)
		}

		if withNotes {
			_, err = stmt.ExecContext(ctx, record.DeviceID, record.Timestamp, location, data, record.Notes)
		} else {
			_, err = stmt.ExecContext(ctx, record.DeviceID, record.Timestamp, location, data)
		}
		if err != nil {
			r.logger.Error("Batch insert failed",
				zap.String("device_id", record.DeviceID),
				zap.Int("batch_size", len(records)),
				zap.Error(err),
			)
			return errors.ErrDatabaseError.WithDetails(map[string]interface{}{
				"cause": err.Error(),
			})
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit batch", zap.Int("batch_size", len(records)), zap.Error(err))
		return errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		})
	}

	return nil
}

// BackfillGeometry derives the point geometry from the location document
// for every row with valid lon/lat. Re-derives identical geometry on
// repeated runs.
func (r *deviceRepository) BackfillGeometry(ctx context.Context) (int64, error) {
	query := `
		UPDATE device_data
		SET geom = ST_SetSRID(
			ST_MakePoint(
				(location->>'lon')::FLOAT,
				(location->>'lat')::FLOAT
			),
			4326
		)
		WHERE location IS NOT NULL
		  AND (location->>'lon') IS NOT NULL
		  AND (location->>'lat') IS NOT NULL
	`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to backfill geometry", zap.Error(err))
		return 0, errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		})
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		})
	}

	return affected, nil
}

// QueryByAttributes translates the typed filter to SQL over the JSONB
// documents, ordered by timestamp descending. AllRecords bypasses every
// condition and pagination.
func (r *deviceRepository) QueryByAttributes(ctx context.Context, filter domain.DeviceFilter) ([]domain.DeviceRow, error) {
	query := `
		SELECT device_id,
		       timestamp,
		       (data->>'temperature')::FLOAT AS temperature,
		       (data->>'battery')::FLOAT AS battery,
		       (data->>'status') AS status,
		       (location->>'region') AS region
		FROM device_data
	`
	var args []interface{}

	if !filter.AllRecords {
		query += `
		WHERE (data->>'temperature')::FLOAT BETWEEN $1 AND $2
		  AND (data->>'battery')::FLOAT >= $3
		  AND (data->>'status') = ANY($4)
		  AND (location->>'region') LIKE $5
		`
		args = []interface{}{
			filter.MinTemp,
			filter.MaxTemp,
			filter.MinBattery,
			pq.Array(filter.Statuses),
			"%" + filter.RegionContains + "%",
		}
	}

	query += " ORDER BY timestamp DESC"

	if !filter.AllRecords && filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query devices by attributes", zap.Error(err))
		return nil, errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		})
	}
	defer rows.Close()

	var result []domain.DeviceRow
	for rows.Next() {
		var row domain.DeviceRow
		if err := rows.Scan(
			&row.DeviceID, &row.Timestamp, &row.Temperature,
			&row.Battery, &row.Status, &row.Region,
		); err != nil {
			r.logger.Error("Failed to scan device row", zap.Error(err))
			continue
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		})
	}

	return result, nil
}

// QueryNearby returns every record whose derived geometry lies within
// radiusKm of the center, ordered ascending by geodesic distance. The
// geography cast matters: planar distance on raw degrees is not
// proportional to physical distance away from the equator.
func (r *deviceRepository) QueryNearby(ctx context.Context, lon, lat, radiusKm float64) ([]domain.NearbyDevice, error) {
	query := `
		SELECT
			device_id,
			ST_X(geom) AS longitude,
			ST_Y(geom) AS latitude,
			(data->>'battery')::FLOAT AS battery,
			(data->>'status') AS status,
			(ST_Distance(geom::geography, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) / 1000.0) AS distance_km
		FROM device_data
		WHERE ST_DWithin(
			geom::geography,
			ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
			$3 * 1000
		)
		ORDER BY distance_km
	`

	rows, err := r.db.QueryContext(ctx, query, lon, lat, radiusKm)
	if err != nil {
		r.logger.Error("Failed to query nearby devices",
			zap.Float64("lon", lon),
			zap.Float64("lat", lat),
			zap.Float64("radius_km", radiusKm),
			zap.Error(err),
		)
		return nil, errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		})
	}
	defer rows.Close()

	var result []domain.NearbyDevice
	for rows.Next() {
		var d domain.NearbyDevice
		if err := rows.Scan(&d.DeviceID, &d.Lon, &d.Lat, &d.Battery, &d.Status, &d.DistanceKm); err != nil {
			r.logger.Error("Failed to scan nearby device", zap.Error(err))
			continue
		}
		result = append(result, d)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		})
	}

	return result, nil
}

// QueryAll lists up to limit records that already have a derived geometry.
// No ordering guarantee beyond store default.
func (r *deviceRepository) QueryAll(ctx context.Context, limit int) ([]domain.DevicePosition, error) {
	query := `
		SELECT device_id,
		       ST_X(geom) AS longitude,
		       ST_Y(geom) AS latitude
		FROM device_data
		WHERE geom IS NOT NULL
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to query all devices", zap.Error(err))
		return nil, errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		})
	}
	defer rows.Close()

	var result []domain.DevicePosition
	for rows.Next() {
		var p domain.DevicePosition
		if err := rows.Scan(&p.DeviceID, &p.Lon, &p.Lat); err != nil {
			continue
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		})
	}

	return result, nil
}

func (r *deviceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM device_data`).Scan(&count); err != nil {
		r.logger.Error("Failed to count device records", zap.Error(err))
		return 0, errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		})
	}
	return count, nil
}

func (r *deviceRepository) Truncate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `TRUNCATE TABLE device_data`); err != nil {
		r.logger.Error("Failed to truncate device_data", zap.Error(err))
		return errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		})
	}

	r.logger.Info("device_data table truncated")
	return nil
}
