package postgres_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/iot-telemetry-service/internal/domain"
	"github.com/iot-telemetry-service/internal/domain/repository"
	"github.com/iot-telemetry-service/internal/pkg/utils"
	"github.com/iot-telemetry-service/internal/repository/postgres"
	"github.com/iot-telemetry-service/internal/repository/postgres/testhelpers"
)

// DeviceRepositoryTestSuite runs against a real PostGIS instance.
type DeviceRepositoryTestSuite struct {
	suite.Suite
	testDB *testhelpers.TestDB
	repo   repository.DeviceRepository
	ctx    context.Context
}

func (s *DeviceRepositoryTestSuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDB(s.T())
	s.repo = postgres.NewDeviceRepository(s.testDB.DB)

	err := s.repo.EnsureSchema(context.Background())
	s.Require().NoError(err, "Failed to ensure schema")
}

func (s *DeviceRepositoryTestSuite) TearDownSuite() {
	if s.testDB != nil {
		s.testDB.Close()
	}
}

func (s *DeviceRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	err := s.testDB.Cleanup(s.ctx)
	s.Require().NoError(err)
}

func testRecord(i int, lon, lat float64, status string) domain.DeviceRecord {
	battery := 75.0 + float64(i%20)
	return domain.DeviceRecord{
		DeviceID:  fmt.Sprintf("sensor_%05d", i),
		Timestamp: fmt.Sprintf("2025-01-%02d 12:00:00", i%27+1),
		Location: domain.Location{
			Lat:      lat,
			Lon:      lon,
			Altitude: 120.5,
			Region:   "Chaoyang",
		},
		Data: domain.SensorPayload{
			Temperature: 20.0 + float64(i%10),
			Humidity:    55.0,
			Battery:     &battery,
			Status:      status,
			Metrics: domain.Metrics{
				Noise: domain.Noise{
					DB: 60.0,
					Spectrum: domain.Spectrum{
						LowFreq:  50.0,
						MidFreq:  500.0,
						HighFreq: 2000.0,
					},
				},
				Vibration: domain.Vibration{X: 0.1, Y: 0.2, Z: 0.3},
			},
		},
	}
}

func (s *DeviceRepositoryTestSuite) seed(n int) {
	records := make([]domain.DeviceRecord, 0, n)
	for i := 0; i < n; i++ {
		// Spread points roughly 1.1km apart along the meridian
		records = append(records, testRecord(i, 116.4, 39.9+float64(i)*0.01, domain.StatusOK))
	}
	err := s.repo.InsertBatch(s.ctx, records, false)
	s.Require().NoError(err)
}

func (s *DeviceRepositoryTestSuite) TestInsertBatch_RoundTrip() {
	s.seed(10)

	count, err := s.repo.Count(s.ctx)
	s.NoError(err)
	s.Equal(int64(10), count)

	rows, err := s.repo.QueryByAttributes(s.ctx, domain.DeviceFilter{
		MinTemp:  -50,
		MaxTemp:  60,
		Statuses: []string{domain.StatusOK, domain.StatusWarn, domain.StatusError},
		Limit:    100,
	})
	s.NoError(err)
	s.Len(rows, 10)

	for _, row := range rows {
		s.NotEmpty(row.DeviceID)
		s.NotEmpty(row.Timestamp)
		s.Equal("Chaoyang", row.Region)
		s.NotNil(row.Battery)
	}
}

func (s *DeviceRepositoryTestSuite) TestInsertBatch_WithNotes() {
	notes := "Generated at 2025-06-01T12:00:00Z"
	rec := testRecord(1, 116.4, 39.9, domain.StatusOK)
	rec.Notes = &notes

	err := s.repo.InsertBatch(s.ctx, []domain.DeviceRecord{rec}, true)
	s.NoError(err)

	count, err := s.repo.Count(s.ctx)
	s.NoError(err)
	s.Equal(int64(1), count)
}

func (s *DeviceRepositoryTestSuite) TestBackfillGeometry() {
	s.seed(5)

	affected, err := s.repo.BackfillGeometry(s.ctx)
	s.NoError(err)
	s.Equal(int64(5), affected)

	// A second pass still rewrites rows with coordinates present
	positions, err := s.repo.QueryAll(s.ctx, 100)
	s.NoError(err)
	s.Len(positions, 5)

	for _, pos := range positions {
		s.InDelta(116.4, pos.Lon, 0.0001)
		s.InDelta(39.9, pos.Lat, 0.2)
	}
}

func (s *DeviceRepositoryTestSuite) TestQueryByAttributes_Filters() {
	low := testRecord(1, 116.4, 39.9, domain.StatusOK)
	low.Data.Temperature = -5
	high := testRecord(2, 116.4, 39.91, domain.StatusError)
	high.Data.Temperature = 45

	err := s.repo.InsertBatch(s.ctx, []domain.DeviceRecord{low, high}, false)
	s.Require().NoError(err)

	rows, err := s.repo.QueryByAttributes(s.ctx, domain.DeviceFilter{
		MinTemp:  40,
		MaxTemp:  50,
		Statuses: []string{domain.StatusError},
		Limit:    10,
	})
	s.NoError(err)
	s.Len(rows, 1)
	s.Equal("sensor_00002", rows[0].DeviceID)
	s.Equal(domain.StatusError, rows[0].Status)
}

func (s *DeviceRepositoryTestSuite) TestQueryByAttributes_RegionSubstring() {
	s.seed(3)

	rows, err := s.repo.QueryByAttributes(s.ctx, domain.DeviceFilter{
		MinTemp:        -50,
		MaxTemp:        60,
		Statuses:       []string{domain.StatusOK},
		RegionContains: "haoyan",
		Limit:          10,
	})
	s.NoError(err)
	s.Len(rows, 3)

	rows, err = s.repo.QueryByAttributes(s.ctx, domain.DeviceFilter{
		MinTemp:        -50,
		MaxTemp:        60,
		Statuses:       []string{domain.StatusOK},
		RegionContains: "Haidian",
		Limit:          10,
	})
	s.NoError(err)
	s.Len(rows, 0)
}

func (s *DeviceRepositoryTestSuite) TestQueryByAttributes_TimestampOrder() {
	s.seed(10)

	rows, err := s.repo.QueryByAttributes(s.ctx, domain.DeviceFilter{
		MinTemp:  -50,
		MaxTemp:  60,
		Statuses: []string{domain.StatusOK},
		Limit:    10,
	})
	s.NoError(err)
	s.Require().NotEmpty(rows)

	for i := 1; i < len(rows); i++ {
		s.GreaterOrEqual(rows[i-1].Timestamp, rows[i].Timestamp)
	}
}

func (s *DeviceRepositoryTestSuite) TestQueryNearby() {
	s.seed(20)

	affected, err := s.repo.BackfillGeometry(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(int64(20), affected)

	centerLon, centerLat := 116.4, 39.9
	radiusKm := 5.0

	devices, err := s.repo.QueryNearby(s.ctx, centerLon, centerLat, radiusKm)
	s.NoError(err)
	s.NotEmpty(devices)

	for i, d := range devices {
		// Every hit within the radius, allowing for geodesic vs haversine drift
		haversine := utils.HaversineDistance(centerLat, centerLon, d.Lat, d.Lon)
		s.LessOrEqual(d.DistanceKm, radiusKm)
		s.InDelta(haversine, d.DistanceKm, 0.1)

		// Ordered closest first
		if i > 0 {
			s.GreaterOrEqual(d.DistanceKm, devices[i-1].DistanceKm)
		}
	}

	// Points 10km out and beyond must not appear
	s.Less(len(devices), 20)
}

func (s *DeviceRepositoryTestSuite) TestTruncate() {
	s.seed(5)

	err := s.repo.Truncate(s.ctx)
	s.NoError(err)

	count, err := s.repo.Count(s.ctx)
	s.NoError(err)
	s.Equal(int64(0), count)
}

func TestDeviceRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(DeviceRepositoryTestSuite))
}
