package domain

import "time"

// DeviceFilter is the typed predicate set for attribute queries. It is
// translated to store-level SQL by the repository; callers never pass raw
// path expressions. AllRecords bypasses every filter and pagination.
type DeviceFilter struct {
	MinTemp        float64
	MaxTemp        float64
	MinBattery     float64
	Statuses       []string
	RegionContains string
	Limit          int
	Offset         int
	AllRecords     bool
}

// DeviceRow is one attribute-query result row. Battery is null for records
// where the field was absent at generation time.
type DeviceRow struct {
	DeviceID    string   `json:"device_id" db:"device_id"`
	Timestamp   string   `json:"timestamp" db:"timestamp"`
	Temperature float64  `json:"temperature" db:"temperature"`
	Battery     *float64 `json:"battery" db:"battery"`
	Status      string   `json:"status" db:"status"`
	Region      string   `json:"region" db:"region"`
}

// NearbyDevice is one radius-query result row, ordered by geodesic distance.
type NearbyDevice struct {
	DeviceID   string   `json:"device_id" db:"device_id"`
	Lon        float64  `json:"longitude" db:"longitude"`
	Lat        float64  `json:"latitude" db:"latitude"`
	Battery    *float64 `json:"battery" db:"battery"`
	Status     string   `json:"status" db:"status"`
	DistanceKm float64  `json:"distance_km" db:"distance_km"`
}

// DevicePosition is one bulk-listing row: records that already have a
// derived geometry.
type DevicePosition struct {
	DeviceID string  `json:"device_id" db:"device_id"`
	Lon      float64 `json:"longitude" db:"longitude"`
	Lat      float64 `json:"latitude" db:"latitude"`
}

// IngestReport is the outcome of one bulk ingestion run. A mid-run store
// failure is carried in Failure while Committed/Skipped keep everything
// accounted before the failing batch.
type IngestReport struct {
	Committed int           `json:"committed"`
	Skipped   int           `json:"skipped"`
	Elapsed   time.Duration `json:"-"`
	ElapsedMS float64       `json:"elapsed_ms"`
	Failure   string        `json:"failure,omitempty"`
}
