package row

import (
	"math"

	gojson "github.com/goccy/go-json"
)

// MarshalJSON encodes d as its natural JSON value. Decimals and temporal
// kinds are strings, blobs are base64, and non-finite floats are strings.
func (d Datum) MarshalJSON() ([]byte, error) {
	switch d.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return gojson.Marshal(d.i != 0)
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return gojson.Marshal(d.i)
	case KindFloat32, KindFloat64:
		if math.IsNaN(d.f) || math.IsInf(d.f, 0) {
			return gojson.Marshal(d.String())
		}
		if d.kind == KindFloat32 {
			return gojson.Marshal(float32(d.f))
		}
		return gojson.Marshal(d.f)
	case KindString:
		return gojson.Marshal(d.s)
	case KindBlob:
		return gojson.Marshal(d.b)
	case KindDecimal:
		return gojson.Marshal(d.dec.String())
	case KindDate:
		return gojson.Marshal(Date(d.i).String())
	case KindTimestamp:
		return gojson.Marshal(Timestamp(d.i).Time().Format("2006-01-02T15:04:05.999999"))
	case KindTimestampLtz:
		return gojson.Marshal(TimestampLtz(d.i).String())
	}
	return []byte("null"), nil
}

// MarshalJSON encodes the row as an array of its field values.
func (r *GenericRow) MarshalJSON() ([]byte, error) {
	return gojson.Marshal(r.values)
}
