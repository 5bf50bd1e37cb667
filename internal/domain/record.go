package domain

// DeviceStatus values a synthesized sensor can report.
const (
	StatusOK    = "OK"
	StatusWarn  = "WARN"
	StatusError = "ERROR"
)

// TimestampLayout is the fixed second-precision format every record carries.
// Fixed-width, so lexicographic order equals chronological order.
const TimestampLayout = "2006-01-02 15:04:05"

// Location is a sampled point guaranteed to lie inside the polygon of the
// named region.
type Location struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Altitude float64 `json:"altitude"`
	Region   string  `json:"region"`
}

// Spectrum holds noise energy per frequency band.
type Spectrum struct {
	LowFreq  float64 `json:"low_freq"`
	MidFreq  float64 `json:"mid_freq"`
	HighFreq float64 `json:"high_freq"`
}

type Noise struct {
	DB       float64  `json:"db"`
	Spectrum Spectrum `json:"spectrum"`
}

type Vibration struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Metrics struct {
	Noise     Noise     `json:"noise"`
	Vibration Vibration `json:"vibration"`
}

type GPS struct {
	Satellites int     `json:"satellites"`
	HDOP       float64 `json:"hdop"`
}

type Acceleration struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// SensorPayload is the semi-structured data document persisted per record.
// Optional fields are pointers: absence is a distinct state from a present
// zero value and absent fields are omitted from the stored JSON entirely.
type SensorPayload struct {
	Temperature  float64       `json:"temperature"`
	Humidity     float64       `json:"humidity"`
	Battery      *float64      `json:"battery,omitempty"`
	Pressure     *float64      `json:"pressure,omitempty"`
	Status       string        `json:"status"`
	Metrics      Metrics       `json:"metrics"`
	GPS          *GPS          `json:"gps,omitempty"`
	Acceleration *Acceleration `json:"acceleration,omitempty"`
	ImagePath    *string       `json:"image_path,omitempty"`
}

// DeviceRecord is one synthesized telemetry record. Immutable once created;
// device_id uniqueness is not enforced, duplicates are permitted.
type DeviceRecord struct {
	DeviceID  string        `json:"device_id"`
	Timestamp string        `json:"timestamp"`
	Location  Location      `json:"location"`
	Data      SensorPayload `json:"data"`
	Notes     *string       `json:"notes,omitempty"`
}
