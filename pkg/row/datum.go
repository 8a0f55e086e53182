// Package row implements the typed value model fed into the columnar encoder:
// the Datum scalar union, its wrapper types, and the InternalRow accessors.
package row

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unsafe"

	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/fluss-go/pkg/errors"
)

// Kind is the discriminant of a Datum. Declaration order is the cross-kind
// sort order.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindBlob
	KindDecimal
	KindDate
	KindTimestamp
	KindTimestampLtz
)

var kindNames = [...]string{
	KindNull:         "Null",
	KindBool:         "Bool",
	KindInt8:         "Int8",
	KindInt16:        "Int16",
	KindInt32:        "Int32",
	KindInt64:        "Int64",
	KindFloat32:      "Float32",
	KindFloat64:      "Float64",
	KindString:       "String",
	KindBlob:         "Blob",
	KindDecimal:      "Decimal",
	KindDate:         "Date",
	KindTimestamp:    "Timestamp",
	KindTimestampLtz: "TimestampLtz",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Datum is one typed scalar value. The zero Datum is Null.
//
// Integer-like kinds (bool, ints, date, timestamps) live in i, floats in f.
// String datums may alias caller memory, see BorrowString.
type Datum struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    []byte
	dec  decimal.Decimal
}

func Null() Datum                  { return Datum{} }
func Int8Datum(v int8) Datum       { return Datum{kind: KindInt8, i: int64(v)} }
func Int16Datum(v int16) Datum     { return Datum{kind: KindInt16, i: int64(v)} }
func Int32Datum(v int32) Datum     { return Datum{kind: KindInt32, i: int64(v)} }
func Int64Datum(v int64) Datum     { return Datum{kind: KindInt64, i: v} }
func Float32Datum(v float32) Datum { return Datum{kind: KindFloat32, f: float64(v)} }
func Float64Datum(v float64) Datum { return Datum{kind: KindFloat64, f: v} }
func StringDatum(v string) Datum   { return Datum{kind: KindString, s: v} }
func BlobDatum(v Blob) Datum       { return Datum{kind: KindBlob, b: v} }
func DateDatum(v Date) Datum       { return Datum{kind: KindDate, i: int64(v)} }

func BoolDatum(v bool) Datum {
	d := Datum{kind: KindBool}
	if v {
		d.i = 1
	}
	return d
}

func DecimalDatum(v decimal.Decimal) Datum {
	return Datum{kind: KindDecimal, dec: v}
}

func TimestampDatum(v Timestamp) Datum {
	return Datum{kind: KindTimestamp, i: int64(v)}
}

func TimestampLtzDatum(v TimestampLtz) Datum {
	return Datum{kind: KindTimestampLtz, i: int64(v)}
}

// BorrowString returns a String datum that aliases b without copying.
// The caller must not modify b for as long as the datum, or any row or
// encoder holding it, is in use.
func BorrowString(b []byte) Datum {
	if len(b) == 0 {
		return StringDatum("")
	}
	return StringDatum(unsafe.String(unsafe.SliceData(b), len(b)))
}

// DatumOf converts a native Go value into a Datum.
func DatumOf(v interface{}) (Datum, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Datum:
		return x, nil
	case bool:
		return BoolDatum(x), nil
	case int8:
		return Int8Datum(x), nil
	case int16:
		return Int16Datum(x), nil
	case int32:
		return Int32Datum(x), nil
	case int64:
		return Int64Datum(x), nil
	case int:
		return Int64Datum(int64(x)), nil
	case float32:
		return Float32Datum(x), nil
	case float64:
		return Float64Datum(x), nil
	case string:
		return StringDatum(x), nil
	case []byte:
		return BlobDatum(NewBlob(x)), nil
	case Blob:
		return BlobDatum(x), nil
	case BlobRef:
		return BlobDatum(x.ToBlob()), nil
	case decimal.Decimal:
		return DecimalDatum(x), nil
	case Date:
		return DateDatum(x), nil
	case Timestamp:
		return TimestampDatum(x), nil
	case TimestampLtz:
		return TimestampLtzDatum(x), nil
	case time.Time:
		return TimestampDatum(TimestampFromTime(x)), nil
	default:
		return Null(), errors.Newf(errors.ErrorTypeConversion, "cannot convert %T to Datum", v).
			WithDetail("source", fmt.Sprintf("%T", v))
	}
}

// MustDatumOf is DatumOf for values known to be convertible.
func MustDatumOf(v interface{}) Datum {
	d, err := DatumOf(v)
	if err != nil {
		panic(err)
	}
	return d
}

// Kind returns the discriminant.
func (d Datum) Kind() Kind { return d.kind }

// IsNull reports whether d is Null.
func (d Datum) IsNull() bool { return d.kind == KindNull }

func kindMismatch(want Kind, got Kind) error {
	return errors.Newf(errors.ErrorTypeConversion, "expected %s datum, got %s", want, got).
		WithDetail("expected", want.String()).
		WithDetail("actual", got.String())
}

func (d Datum) AsBool() (bool, error) {
	if d.kind != KindBool {
		return false, kindMismatch(KindBool, d.kind)
	}
	return d.i != 0, nil
}

func (d Datum) AsInt8() (int8, error) {
	if d.kind != KindInt8 {
		return 0, kindMismatch(KindInt8, d.kind)
	}
	return int8(d.i), nil
}

func (d Datum) AsInt16() (int16, error) {
	if d.kind != KindInt16 {
		return 0, kindMismatch(KindInt16, d.kind)
	}
	return int16(d.i), nil
}

func (d Datum) AsInt32() (int32, error) {
	if d.kind != KindInt32 {
		return 0, kindMismatch(KindInt32, d.kind)
	}
	return int32(d.i), nil
}

func (d Datum) AsInt64() (int64, error) {
	if d.kind != KindInt64 {
		return 0, kindMismatch(KindInt64, d.kind)
	}
	return d.i, nil
}

func (d Datum) AsFloat32() (float32, error) {
	if d.kind != KindFloat32 {
		return 0, kindMismatch(KindFloat32, d.kind)
	}
	return float32(d.f), nil
}

func (d Datum) AsFloat64() (float64, error) {
	if d.kind != KindFloat64 {
		return 0, kindMismatch(KindFloat64, d.kind)
	}
	return d.f, nil
}

func (d Datum) AsString() (string, error) {
	if d.kind != KindString {
		return "", kindMismatch(KindString, d.kind)
	}
	return d.s, nil
}

// AsBlob returns a view over the blob bytes; it does not copy.
func (d Datum) AsBlob() (BlobRef, error) {
	if d.kind != KindBlob {
		return nil, kindMismatch(KindBlob, d.kind)
	}
	return BlobRef(d.b), nil
}

func (d Datum) AsDecimal() (decimal.Decimal, error) {
	if d.kind != KindDecimal {
		return decimal.Decimal{}, kindMismatch(KindDecimal, d.kind)
	}
	return d.dec, nil
}

func (d Datum) AsDate() (Date, error) {
	if d.kind != KindDate {
		return 0, kindMismatch(KindDate, d.kind)
	}
	return Date(d.i), nil
}

func (d Datum) AsTimestamp() (Timestamp, error) {
	if d.kind != KindTimestamp {
		return 0, kindMismatch(KindTimestamp, d.kind)
	}
	return Timestamp(d.i), nil
}

func (d Datum) AsTimestampLtz() (TimestampLtz, error) {
	if d.kind != KindTimestampLtz {
		return 0, kindMismatch(KindTimestampLtz, d.kind)
	}
	return TimestampLtz(d.i), nil
}

// Compare orders datums first by kind, then by payload. It returns -1, 0 or 1.
// Floats compare in total order: NaN equals NaN and sorts above +Inf.
func Compare(a, b Datum) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindNull:
		return 0
	case KindFloat32, KindFloat64:
		return compareFloat(a.f, b.f)
	case KindString:
		return strings.Compare(a.s, b.s)
	case KindBlob:
		return bytes.Compare(a.b, b.b)
	case KindDecimal:
		return a.dec.Cmp(b.dec)
	default:
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		}
		return 0
	}
}

func compareFloat(a, b float64) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Equal reports structural equality under the same rules as Compare.
func (d Datum) Equal(o Datum) bool { return Compare(d, o) == 0 }

// Less reports whether d sorts before o.
func (d Datum) Less(o Datum) bool { return Compare(d, o) < 0 }

func (d Datum) String() string {
	switch d.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(d.i != 0)
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return strconv.FormatInt(d.i, 10)
	case KindFloat32:
		return strconv.FormatFloat(d.f, 'g', -1, 32)
	case KindFloat64:
		return strconv.FormatFloat(d.f, 'g', -1, 64)
	case KindString:
		return "'" + d.s + "'"
	case KindBlob:
		return Blob(d.b).String()
	case KindDecimal:
		return d.dec.String()
	case KindDate:
		return Date(d.i).String()
	case KindTimestamp:
		return Timestamp(d.i).String()
	case KindTimestampLtz:
		return TimestampLtz(d.i).String()
	}
	return d.kind.String()
}

// checkDecimal verifies v is representable as DECIMAL(precision, scale)
// without rounding.
func checkDecimal(v decimal.Decimal, precision, scale int32) error {
	shifted := v.Shift(scale)
	if !shifted.IsInteger() {
		return errors.Newf(errors.ErrorTypeConversion, "decimal %s has more than %d fractional digits", v, scale).
			WithDetail("scale", scale)
	}
	digits := len(new(big.Int).Abs(shifted.BigInt()).String())
	if digits > int(precision) {
		return errors.Newf(errors.ErrorTypeConversion, "decimal %s exceeds precision %d", v, precision).
			WithDetail("precision", precision)
	}
	return nil
}
