package row

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/fluss-go/pkg/errors"
)

var builderNames = map[arrow.Type]string{
	arrow.BOOL:              "BooleanBuilder",
	arrow.INT8:              "Int8Builder",
	arrow.INT16:             "Int16Builder",
	arrow.INT32:             "Int32Builder",
	arrow.INT64:             "Int64Builder",
	arrow.FLOAT32:           "Float32Builder",
	arrow.FLOAT64:           "Float64Builder",
	arrow.STRING:            "StringBuilder",
	arrow.BINARY:            "BinaryBuilder",
	arrow.FIXED_SIZE_BINARY: "FixedSizeBinaryBuilder",
	arrow.DECIMAL128:        "Decimal128Builder",
	arrow.DATE32:            "Date32Builder",
	arrow.TIMESTAMP:         "TimestampBuilder",
}

// BuilderName names the Arrow builder that accepts values of dt.
func BuilderName(dt arrow.DataType) string {
	if name, ok := builderNames[dt.ID()]; ok {
		return name
	}
	return dt.String() + " builder"
}

func cannotAppend(k Kind, dt arrow.DataType) *errors.Error {
	target := BuilderName(dt)
	return errors.Newf(errors.ErrorTypeConversion, "cannot append %s to %s", k, target).
		WithDetail("source", k.String()).
		WithDetail("target", target)
}

// CheckAppendable reports whether d can be appended to a builder of type dt
// without truncation. It never mutates anything. Null is always appendable;
// nullability is a schema concern.
func CheckAppendable(d Datum, dt arrow.DataType) error {
	var want arrow.Type
	switch d.kind {
	case KindNull:
		return nil
	case KindBool:
		want = arrow.BOOL
	case KindInt8:
		want = arrow.INT8
	case KindInt16:
		want = arrow.INT16
	case KindInt32:
		want = arrow.INT32
	case KindInt64:
		want = arrow.INT64
	case KindFloat32:
		want = arrow.FLOAT32
	case KindFloat64:
		want = arrow.FLOAT64
	case KindString:
		want = arrow.STRING
	case KindBlob:
		switch t := dt.(type) {
		case *arrow.BinaryType:
			return nil
		case *arrow.FixedSizeBinaryType:
			if len(d.b) != t.ByteWidth {
				return cannotAppend(d.kind, dt).
					WithDetail("length", len(d.b)).
					WithDetail("byte_width", t.ByteWidth)
			}
			return nil
		}
		return cannotAppend(d.kind, dt)
	case KindDecimal:
		t, ok := dt.(*arrow.Decimal128Type)
		if !ok {
			return cannotAppend(d.kind, dt)
		}
		if err := checkDecimal(d.dec, t.Precision, t.Scale); err != nil {
			ce := cannotAppend(d.kind, dt)
			ce.Cause = err
			return ce
		}
		return nil
	case KindDate:
		want = arrow.DATE32
	case KindTimestamp, KindTimestampLtz:
		t, ok := dt.(*arrow.TimestampType)
		if !ok {
			return cannotAppend(d.kind, dt)
		}
		unit := arrow.Microsecond
		if d.kind == KindTimestampLtz {
			unit = arrow.Millisecond
		}
		if t.Unit != unit {
			return cannotAppend(d.kind, dt).WithDetail("unit", t.Unit.String())
		}
		return nil
	default:
		return cannotAppend(d.kind, dt)
	}
	if dt.ID() != want {
		return cannotAppend(d.kind, dt)
	}
	return nil
}

// AppendTo appends d to b. A kind that does not pair with the builder is
// rejected with a conversion error naming both, and b is left unchanged.
func AppendTo(d Datum, b array.Builder) error {
	if err := CheckAppendable(d, b.Type()); err != nil {
		return err
	}
	if d.kind == KindNull {
		b.AppendNull()
		return nil
	}

	switch bb := b.(type) {
	case *array.BooleanBuilder:
		bb.Append(d.i != 0)
	case *array.Int8Builder:
		bb.Append(int8(d.i))
	case *array.Int16Builder:
		bb.Append(int16(d.i))
	case *array.Int32Builder:
		bb.Append(int32(d.i))
	case *array.Int64Builder:
		bb.Append(d.i)
	case *array.Float32Builder:
		bb.Append(float32(d.f))
	case *array.Float64Builder:
		bb.Append(d.f)
	case *array.StringBuilder:
		bb.Append(d.s)
	case *array.BinaryBuilder:
		bb.Append(d.b)
	case *array.FixedSizeBinaryBuilder:
		bb.Append(d.b)
	case *array.Decimal128Builder:
		scale := bb.Type().(*arrow.Decimal128Type).Scale
		bb.Append(decimal128.FromBigInt(d.dec.Shift(scale).BigInt()))
	case *array.Date32Builder:
		bb.Append(arrow.Date32(d.i))
	case *array.TimestampBuilder:
		bb.Append(arrow.Timestamp(d.i))
	default:
		return cannotAppend(d.kind, b.Type())
	}
	return nil
}

// FromArrow reads element i of arr back into an owning Datum.
func FromArrow(arr arrow.Array, i int) (Datum, error) {
	if arr.IsNull(i) {
		return Null(), nil
	}
	switch a := arr.(type) {
	case *array.Boolean:
		return BoolDatum(a.Value(i)), nil
	case *array.Int8:
		return Int8Datum(a.Value(i)), nil
	case *array.Int16:
		return Int16Datum(a.Value(i)), nil
	case *array.Int32:
		return Int32Datum(a.Value(i)), nil
	case *array.Int64:
		return Int64Datum(a.Value(i)), nil
	case *array.Float32:
		return Float32Datum(a.Value(i)), nil
	case *array.Float64:
		return Float64Datum(a.Value(i)), nil
	case *array.String:
		return StringDatum(strings.Clone(a.Value(i))), nil
	case *array.Binary:
		return BlobDatum(NewBlob(a.Value(i))), nil
	case *array.FixedSizeBinary:
		return BlobDatum(NewBlob(a.Value(i))), nil
	case *array.Decimal128:
		scale := a.DataType().(*arrow.Decimal128Type).Scale
		return DecimalDatum(decimal.NewFromBigInt(a.Value(i).BigInt(), -scale)), nil
	case *array.Date32:
		return DateDatum(Date(a.Value(i))), nil
	case *array.Timestamp:
		switch a.DataType().(*arrow.TimestampType).Unit {
		case arrow.Microsecond:
			return TimestampDatum(Timestamp(a.Value(i))), nil
		case arrow.Millisecond:
			return TimestampLtzDatum(TimestampLtz(a.Value(i))), nil
		}
	}
	return Null(), errors.Newf(errors.ErrorTypeConversion, "cannot read %s into a Datum", arr.DataType()).
		WithDetail("source", arr.DataType().String())
}
