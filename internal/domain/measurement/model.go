package measurement

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Source tags who submitted a measurement.
const (
	SourceCliente = "cliente"
	SourceAdmin   = "admin"
)

// Domain errors
var (
	ErrInvalidMeasurement = errors.New("invalid measurement")
	ErrNoReadings         = fmt.Errorf("%w: at least one reading is required", ErrInvalidMeasurement)
	ErrEmptyUserID        = errors.New("user ID is required")
	ErrInvalidSource      = errors.New("source must be 'cliente' or 'admin'")
)

// Measurement is a single timestamped body-metric snapshot.
// Any reading may be nil, meaning it was not submitted (not zero).
type Measurement struct {
	ID        string
	UserID    string
	Weight    *float64 // kg
	Height    *float64 // cm
	Waist     *float64 // cm
	BodyFat   *float64 // %
	Source    string
	CreatedAt time.Time
}

// Form carries the raw text of a measurement submission.
type Form struct {
	Weight  string
	Height  string
	Waist   string
	BodyFat string
}

// IsBlank reports whether every field of the form is empty after trimming.
func (f Form) IsBlank() bool {
	return strings.TrimSpace(f.Weight) == "" &&
		strings.TrimSpace(f.Height) == "" &&
		strings.TrimSpace(f.Waist) == "" &&
		strings.TrimSpace(f.BodyFat) == ""
}

// ParseReading parses one numeric field. A blank field yields nil.
// Two checks share ErrInvalidMeasurement: a parse check (not a number, NaN, Inf)
// and a range check (zero or negative). A body metric of 0 is never a real reading.
func ParseReading(field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidMeasurement, field, raw)
	}
	return &v, nil
}

// Parse converts a submission into a Measurement.
// PRE: userID and source are set by the caller
// POST: every reading is either nil or a positive finite value; any malformed field fails the whole form
func Parse(f Form, userID, source string, id string, now time.Time) (Measurement, error) {
	m := Measurement{
		ID:        id,
		UserID:    userID,
		Source:    source,
		CreatedAt: now,
	}
	var err error
	if m.Weight, err = ParseReading("peso", f.Weight); err != nil {
		return Measurement{}, err
	}
	if m.Height, err = ParseReading("altura", f.Height); err != nil {
		return Measurement{}, err
	}
	if m.Waist, err = ParseReading("cintura", f.Waist); err != nil {
		return Measurement{}, err
	}
	if m.BodyFat, err = ParseReading("grasa", f.BodyFat); err != nil {
		return Measurement{}, err
	}
	if err := m.Validate(); err != nil {
		return Measurement{}, err
	}
	return m, nil
}

// Validate checks if the Measurement has valid data.
// PRE: Measurement struct is populated
// POST: Returns nil if valid, error otherwise. These are range checks on
// already-parsed values: no readings at all is ErrNoReadings, grasa above 100 is
// ErrInvalidMeasurement.
func (m *Measurement) Validate() error {
	if m.UserID == "" {
		return ErrEmptyUserID
	}
	if m.Source != SourceCliente && m.Source != SourceAdmin {
		return ErrInvalidSource
	}
	if m.Weight == nil && m.Height == nil && m.Waist == nil && m.BodyFat == nil {
		return ErrNoReadings
	}
	if m.BodyFat != nil && *m.BodyFat > 100 {
		return fmt.Errorf("%w: grasa must be a percentage", ErrInvalidMeasurement)
	}
	return nil
}

// BMI returns the body-mass index when both weight (kg) and height (cm) are present.
func (m *Measurement) BMI() (float64, bool) {
	if m.Weight == nil || m.Height == nil {
		return 0, false
	}
	h := *m.Height / 100.0
	return *m.Weight / (h * h), true
}

// BMICategory labels a BMI value.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Bajo peso"
	case bmi < 25.0:
		return "Normal"
	case bmi < 30.0:
		return "Sobrepeso"
	default:
		return "Obesidad"
	}
}
