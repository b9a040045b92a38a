// Package timeutil carries the canonical time handling for the service.
//
// Every instant is normalized to UTC at the boundary and stored as a
// marker-less UTC value (Mongo DateTime, epoch milliseconds). Reads re-attach
// the UTC marker before the value crosses back over the boundary. That is the
// one deliberate asymmetry: stored without marker, compared with marker.
package timeutil

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Layouts accepted at the JSON boundary. A timestamp without an offset is
// taken as already expressed in UTC; its wall-clock value is never shifted.
var markerlessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Time wraps time.Time with the service's boundary semantics.
// The zero value is usable and reports IsZero.
type Time struct {
	time.Time
}

// FromStd normalizes a standard time into the canonical base.
// Values are truncated to millisecond to match store precision.
func FromStd(t time.Time) Time {
	return Time{t.UTC().Truncate(time.Millisecond)}
}

// Now returns the current instant, UTC-tagged.
func Now() Time {
	return FromStd(time.Now())
}

// Parse reads a textual timestamp. RFC3339 with an explicit offset is
// converted to UTC; a marker-less timestamp is tagged as UTC in place.
func Parse(s string) (Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return FromStd(t), nil
	}
	for _, layout := range markerlessLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return FromStd(t), nil
		}
	}
	return Time{}, fmt.Errorf("unsupported timestamp format: %q", s)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp must be a JSON string, got %s", data)
	}
	parsed, err := Parse(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalBSONValue strips the marker: Mongo DateTime is epoch milliseconds
// with no attached zone.
func (t Time) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(primitive.NewDateTimeFromTime(t.UTC()))
}

// UnmarshalBSONValue re-attaches the UTC marker to the stored instant.
func (t *Time) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	var dt primitive.DateTime
	if err := bson.UnmarshalValue(bt, data, &dt); err != nil {
		return fmt.Errorf("failed to decode stored timestamp: %w", err)
	}
	t.Time = dt.Time().UTC()
	return nil
}

// Before and After compare the underlying instants, marker-independent.
func (t Time) Before(other Time) bool { return t.Time.Before(other.Time) }
func (t Time) After(other Time) bool  { return t.Time.After(other.Time) }
func (t Time) Equal(other Time) bool  { return t.Time.Equal(other.Time) }
