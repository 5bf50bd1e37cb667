package dto

// GenerateRequest drives one generate-and-ingest run.
type GenerateRequest struct {
	Count              int     `json:"count" validate:"required,min=1,max=1000000"`
	BatteryMissRate    float64 `json:"battery_miss_rate" validate:"gte=0,lte=1"`
	PressureMissRate   float64 `json:"pressure_miss_rate" validate:"gte=0,lte=1"`
	ForceGPS           bool    `json:"force_gps"`
	ForceAccelerometer bool    `json:"force_accelerometer"`
	WithNotes          bool    `json:"with_notes"`
	// PreviewCount is how many generated records to echo back.
	PreviewCount int `json:"preview_count" validate:"gte=0,lte=100"`
	// Seed makes the run reproducible when set.
	Seed *int64 `json:"seed,omitempty"`
}

// QueryRequest is the attribute filter set. AllRecords bypasses every
// filter and pagination.
type QueryRequest struct {
	MinTemp        float64  `json:"min_temp"`
	MaxTemp        float64  `json:"max_temp"`
	MinBattery     float64  `json:"min_battery"`
	Statuses       []string `json:"statuses" validate:"omitempty,dive,oneof=OK WARN ERROR"`
	RegionContains string   `json:"region_contains"`
	Limit          int      `json:"limit" validate:"gte=0,lte=100000"`
	Offset         int      `json:"offset" validate:"gte=0"`
	AllRecords     bool     `json:"all_records"`
}

// NearbyRequest is a radius query around a center point.
type NearbyRequest struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	RadiusKm float64 `json:"radius_km"`
}
