package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/iot-telemetry-service/internal/domain"
)

const deviceIDPrefix = "sensor_"

// Two-year timestamp window for synthesized records.
var (
	timestampWindowStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	timestampWindowEnd   = time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
)

// FieldConfig controls per-record field presence during synthesis.
type FieldConfig struct {
	// BatteryMissRate / PressureMissRate are the probabilities, in [0,1],
	// that the field is absent from the payload.
	BatteryMissRate  float64
	PressureMissRate float64
	// ForceGPS / ForceAccelerometer override the default presence gates
	// (80% and 50% respectively) and make the block always present.
	ForceGPS           bool
	ForceAccelerometer bool
	// WithNotes attaches a generation-time marker to every record.
	WithNotes bool
}

// Synthesizer builds telemetry records from the sampler and an injectable
// random source. Deterministic under a seeded source; pure value
// construction, no side effects.
type Synthesizer struct {
	sampler *Sampler
	rng     *rand.Rand
	cfg     FieldConfig
	now     func() time.Time
}

func NewSynthesizer(sampler *Sampler, rng *rand.Rand, cfg FieldConfig) *Synthesizer {
	return &Synthesizer{
		sampler: sampler,
		rng:     rng,
		cfg:     cfg,
		now:     time.Now,
	}
}

// WithClock replaces the wall clock used for the notes marker. Testing hook.
func (s *Synthesizer) WithClock(now func() time.Time) *Synthesizer {
	s.now = now
	return s
}

// Synthesize builds one record. Propagates sampling exhaustion unchanged.
func (s *Synthesizer) Synthesize() (domain.DeviceRecord, error) {
	location, err := s.sampler.Sample()
	if err != nil {
		return domain.DeviceRecord{}, err
	}

	record := domain.DeviceRecord{
		DeviceID:  s.deviceID(),
		Timestamp: s.timestamp(),
		Location:  location,
		Data:      s.payload(),
	}

	if s.cfg.WithNotes {
		notes := fmt.Sprintf("Generated at %s", s.now().Format(time.RFC3339))
		record.Notes = &notes
	}

	return record, nil
}

// deviceID returns a fixed-prefix ID with a 5-digit suffix. Uniqueness is
// deliberately not guaranteed.
func (s *Synthesizer) deviceID() string {
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = byte('0' + s.rng.Intn(10))
	}
	return deviceIDPrefix + string(suffix)
}

// timestamp draws a uniform instant within the fixed two-year window,
// formatted at second precision.
func (s *Synthesizer) timestamp() string {
	days := int(timestampWindowEnd.Sub(timestampWindowStart).Hours() / 24)
	t := timestampWindowStart.
		AddDate(0, 0, s.rng.Intn(days+1)).
		Add(time.Duration(s.rng.Intn(86401)) * time.Second)
	return t.Format(domain.TimestampLayout)
}

func (s *Synthesizer) payload() domain.SensorPayload {
	data := domain.SensorPayload{
		Temperature: round2(uniform(s.rng, -10, 50)),
		Humidity:    round2(uniform(s.rng, 10, 100)),
		Status:      s.status(),
		Metrics: domain.Metrics{
			Noise: domain.Noise{
				DB: round2(uniform(s.rng, 30, 120)),
				Spectrum: domain.Spectrum{
					LowFreq:  round2(uniform(s.rng, 20, 100)),
					MidFreq:  round2(uniform(s.rng, 100, 1000)),
					HighFreq: round2(uniform(s.rng, 1000, 5000)),
				},
			},
			Vibration: domain.Vibration{
				X: round3(uniform(s.rng, -5, 5)),
				Y: round3(uniform(s.rng, -5, 5)),
				Z: round3(uniform(s.rng, -5, 5)),
			},
		},
	}

	if s.rng.Float64() >= s.cfg.BatteryMissRate {
		battery := round2(uniform(s.rng, 10, 100))
		data.Battery = &battery
	}
	if s.rng.Float64() >= s.cfg.PressureMissRate {
		pressure := round2(uniform(s.rng, 950, 1050))
		data.Pressure = &pressure
	}

	if s.cfg.ForceGPS || s.rng.Float64() > 0.2 {
		data.GPS = &domain.GPS{
			Satellites: 5 + s.rng.Intn(16),
			HDOP:       round2(uniform(s.rng, 0.5, 3.0)),
		}
	}

	if s.cfg.ForceAccelerometer || s.rng.Float64() > 0.5 {
		data.Acceleration = &domain.Acceleration{
			X: round2(uniform(s.rng, -10, 10)),
			Y: round2(uniform(s.rng, -10, 10)),
			Z: round2(uniform(s.rng, -10, 10)),
		}
	}

	if s.rng.Float64() > 0.5 {
		path := fmt.Sprintf("/images/%d.jpg", 1+s.rng.Intn(1000))
		data.ImagePath = &path
	}

	return data
}

func (s *Synthesizer) status() string {
	switch s.rng.Intn(3) {
	case 0:
		return domain.StatusOK
	case 1:
		return domain.StatusWarn
	default:
		return domain.StatusError
	}
}

func round3(v float64) float64 {
	return math.Round(v*1e3) / 1e3
}
