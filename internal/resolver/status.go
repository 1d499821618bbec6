package resolver

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Status is a Sensu check status.
type Status int

const (
	StatusOK       Status = 0
	StatusWarning  Status = 1
	StatusCritical Status = 2
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarning:
		return "warning"
	case StatusCritical:
		return "critical"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Valid reports whether s is one of OK, Warning or Critical.
func (s Status) Valid() bool {
	return s == StatusOK || s == StatusWarning || s == StatusCritical
}

// Firing reports whether the status opens an incident.
func (s Status) Firing() bool {
	return s == StatusWarning || s == StatusCritical
}

// InputValidationError reports an unusable user-supplied or derived input.
type InputValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ParseStatus parses an integer status from text and validates it.
// Surrounding whitespace is ignored.
func ParseStatus(s string) (Status, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &InputValidationError{Field: "status", Value: s, Reason: "not an integer"}
	}
	return validStatus(Status(n), s)
}

// StatusFromValue coerces a decoded event value to a Status. Integral numbers
// are used as-is, fractional numbers are truncated toward zero, numeric
// strings are parsed and booleans count as 0 or 1.
func StatusFromValue(v any) (Status, error) {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return validStatus(Status(n), val.String())
		}
		f, err := val.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, &InputValidationError{Field: "status", Value: val.String(), Reason: "not a number"}
		}
		return validStatus(Status(math.Trunc(f)), val.String())
	case float64:
		return validStatus(Status(math.Trunc(val)), strconv.FormatFloat(val, 'g', -1, 64))
	case int:
		return validStatus(Status(val), strconv.Itoa(val))
	case string:
		return ParseStatus(val)
	case bool:
		if val {
			return StatusWarning, nil
		}
		return StatusOK, nil
	default:
		return 0, &InputValidationError{Field: "status", Value: fmt.Sprint(v), Reason: "not an integer"}
	}
}

func validStatus(s Status, raw string) (Status, error) {
	if !s.Valid() {
		return 0, &InputValidationError{Field: "status", Value: raw, Reason: "must be one of 0 (OK), 1 (Warning), 2 (Critical)"}
	}
	return s, nil
}
