// Package oem loads NASA's public ISS OEM (Orbit Ephemeris Message) XML
// dataset and holds it as an immutable in-memory snapshot.
package oem

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// TimestampLayout is the fixed day-of-year timestamp format used throughout
// the OEM dataset (e.g. "2024-045T12:00:00.000Z").
const TimestampLayout = "2006-002T15:04:05.000Z"

// timestampPattern matches values in the dataset's timestamp format.
// Header and metadata values matching it are rendered as readable dates.
var timestampPattern = regexp.MustCompile(`^\d{4}-\d{3}T\d\d:\d\d:\d\d\.\d\d\dZ$`)

// Epoch is one timestamped state-vector record: position in km, velocity
// in km/s, Earth-centered inertial frame. Immutable once parsed.
type Epoch struct {
	Timestamp time.Time
	X         float64
	Y         float64
	Z         float64
	DX        float64
	DY        float64
	DZ        float64
}

type epochJSON struct {
	Timestamp string  `json:"timestamp"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	DX        float64 `json:"dx"`
	DY        float64 `json:"dy"`
	DZ        float64 `json:"dz"`
}

// MarshalJSON renders the timestamp in the dataset's fixed format so the
// serialized value round-trips through /epochs/{epoch} lookups.
func (e Epoch) MarshalJSON() ([]byte, error) {
	return json.Marshal(epochJSON{
		Timestamp: e.Timestamp.UTC().Format(TimestampLayout),
		X:         e.X,
		Y:         e.Y,
		Z:         e.Z,
		DX:        e.DX,
		DY:        e.DY,
		DZ:        e.DZ,
	})
}

// KVMap is a string mapping for the OEM header and metadata sections.
// Values matching the dataset timestamp format are rendered as
// human-readable RFC 1123 strings when serialized.
type KVMap map[string]string

func (m KVMap) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = RenderValue(v)
	}
	return json.Marshal(out)
}

// RenderValue converts a dataset timestamp string to RFC 1123 (UTC) form.
// Non-timestamp values pass through unchanged.
func RenderValue(v string) string {
	if !timestampPattern.MatchString(v) {
		return v
	}
	t, err := time.Parse(TimestampLayout, v)
	if err != nil {
		return v
	}
	return t.UTC().Format(time.RFC1123)
}

// Dataset is one complete parse of the upstream OEM document.
// Immutable after construction; safe for concurrent reads.
type Dataset struct {
	Header    KVMap
	Metadata  KVMap
	Comments  []string
	Epochs    []Epoch
	FetchedAt time.Time
}

// FetchError indicates the upstream document could not be retrieved
// (transport failure or non-2xx response).
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching OEM data from %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError indicates the upstream document was retrieved but malformed:
// missing required sections, non-numeric coordinates, or bad timestamps.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing OEM data: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
