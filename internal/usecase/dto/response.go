package dto

import "github.com/iot-telemetry-service/internal/domain"

// GenerateResponse reports one generate-and-ingest run.
type GenerateResponse struct {
	Generated int                   `json:"generated"`
	Report    domain.IngestReport   `json:"report"`
	Preview   []domain.DeviceRecord `json:"preview,omitempty"`
}

type QueryResponse struct {
	Rows      []domain.DeviceRow `json:"rows"`
	Total     int                `json:"total"`
	ElapsedMS float64            `json:"elapsed_ms"`
}

type NearbyResponse struct {
	Devices   []domain.NearbyDevice `json:"devices"`
	Total     int                   `json:"total"`
	ElapsedMS float64               `json:"elapsed_ms"`
	Cached    bool                  `json:"cached"`
}

type DeviceListResponse struct {
	Devices []domain.DevicePosition `json:"devices"`
	Total   int                     `json:"total"`
}

type BackfillResponse struct {
	AffectedRows int64 `json:"affected_rows"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}
