package generator_test

import (
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iot-telemetry-service/internal/domain"
	"github.com/iot-telemetry-service/internal/generator"
)

func newSynthesizer(t *testing.T, seed int64, cfg generator.FieldConfig) *generator.Synthesizer {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	sampler := generator.NewSampler(twoSquareCatalog(t), rng, 0, 0)
	return generator.NewSynthesizer(sampler, rng, cfg)
}

func TestSynthesizer_RecordShape(t *testing.T) {
	synth := newSynthesizer(t, 1, generator.FieldConfig{})

	deviceID := regexp.MustCompile(`^sensor_\d{5}$`)
	windowStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC)

	for i := 0; i < 1000; i++ {
		rec, err := synth.Synthesize()
		require.NoError(t, err)

		assert.Regexp(t, deviceID, rec.DeviceID)

		ts, err := time.Parse(domain.TimestampLayout, rec.Timestamp)
		require.NoError(t, err)
		assert.False(t, ts.Before(windowStart))
		assert.True(t, ts.Before(windowEnd))

		data := rec.Data
		assert.GreaterOrEqual(t, data.Temperature, -10.0)
		assert.LessOrEqual(t, data.Temperature, 50.0)
		assert.GreaterOrEqual(t, data.Humidity, 10.0)
		assert.LessOrEqual(t, data.Humidity, 100.0)
		assert.Contains(t, []string{domain.StatusOK, domain.StatusWarn, domain.StatusError}, data.Status)

		assert.GreaterOrEqual(t, data.Metrics.Noise.DB, 30.0)
		assert.LessOrEqual(t, data.Metrics.Noise.DB, 120.0)
		assert.GreaterOrEqual(t, data.Metrics.Noise.Spectrum.LowFreq, 20.0)
		assert.LessOrEqual(t, data.Metrics.Noise.Spectrum.LowFreq, 100.0)
		assert.GreaterOrEqual(t, data.Metrics.Noise.Spectrum.MidFreq, 100.0)
		assert.LessOrEqual(t, data.Metrics.Noise.Spectrum.MidFreq, 1000.0)
		assert.GreaterOrEqual(t, data.Metrics.Noise.Spectrum.HighFreq, 1000.0)
		assert.LessOrEqual(t, data.Metrics.Noise.Spectrum.HighFreq, 5000.0)

		for _, axis := range []float64{data.Metrics.Vibration.X, data.Metrics.Vibration.Y, data.Metrics.Vibration.Z} {
			assert.GreaterOrEqual(t, axis, -5.0)
			assert.LessOrEqual(t, axis, 5.0)
		}

		if data.Battery != nil {
			assert.GreaterOrEqual(t, *data.Battery, 10.0)
			assert.LessOrEqual(t, *data.Battery, 100.0)
		}
		if data.Pressure != nil {
			assert.GreaterOrEqual(t, *data.Pressure, 950.0)
			assert.LessOrEqual(t, *data.Pressure, 1050.0)
		}
		if data.GPS != nil {
			assert.GreaterOrEqual(t, data.GPS.Satellites, 5)
			assert.LessOrEqual(t, data.GPS.Satellites, 20)
			assert.GreaterOrEqual(t, data.GPS.HDOP, 0.5)
			assert.LessOrEqual(t, data.GPS.HDOP, 3.0)
		}
		if data.ImagePath != nil {
			assert.Regexp(t, `^/images/\d+\.jpg$`, *data.ImagePath)
		}

		assert.Nil(t, rec.Notes)
	}
}

func TestSynthesizer_BatteryMissRate(t *testing.T) {
	synth := newSynthesizer(t, 99, generator.FieldConfig{BatteryMissRate: 0.2})

	const n = 10000
	missing := 0
	for i := 0; i < n; i++ {
		rec, err := synth.Synthesize()
		require.NoError(t, err)
		if rec.Data.Battery == nil {
			missing++
		}
	}

	assert.InDelta(t, 0.2, float64(missing)/float64(n), 0.02)
}

func TestSynthesizer_ForceFlags(t *testing.T) {
	synth := newSynthesizer(t, 5, generator.FieldConfig{
		ForceGPS:           true,
		ForceAccelerometer: true,
	})

	for i := 0; i < 200; i++ {
		rec, err := synth.Synthesize()
		require.NoError(t, err)
		assert.NotNil(t, rec.Data.GPS)
		assert.NotNil(t, rec.Data.Acceleration)
	}
}

func TestSynthesizer_Notes(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	synth := newSynthesizer(t, 5, generator.FieldConfig{WithNotes: true}).
		WithClock(func() time.Time { return fixed })

	rec, err := synth.Synthesize()
	require.NoError(t, err)
	require.NotNil(t, rec.Notes)
	assert.Equal(t, "Generated at 2025-06-01T12:00:00Z", *rec.Notes)
}

func TestSynthesizer_Deterministic(t *testing.T) {
	s1 := newSynthesizer(t, 1234, generator.FieldConfig{BatteryMissRate: 0.1, WithNotes: false})
	s2 := newSynthesizer(t, 1234, generator.FieldConfig{BatteryMissRate: 0.1, WithNotes: false})

	for i := 0; i < 100; i++ {
		r1, err1 := s1.Synthesize()
		r2, err2 := s2.Synthesize()
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, r1, r2)
	}
}
