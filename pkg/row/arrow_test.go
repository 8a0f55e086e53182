package row

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/fluss-go/pkg/errors"
)

func TestAppendToRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	tests := []struct {
		name  string
		dt    arrow.DataType
		datum Datum
	}{
		{"bool", arrow.FixedWidthTypes.Boolean, BoolDatum(true)},
		{"int8", arrow.PrimitiveTypes.Int8, Int8Datum(-1)},
		{"int16", arrow.PrimitiveTypes.Int16, Int16Datum(300)},
		{"int32", arrow.PrimitiveTypes.Int32, Int32Datum(42)},
		{"int64", arrow.PrimitiveTypes.Int64, Int64Datum(1 << 40)},
		{"float32", arrow.PrimitiveTypes.Float32, Float32Datum(0.5)},
		{"float64", arrow.PrimitiveTypes.Float64, Float64Datum(-2.75)},
		{"string", arrow.BinaryTypes.String, StringDatum("abc")},
		{"binary", arrow.BinaryTypes.Binary, BlobDatum(NewBlob([]byte{0, 1}))},
		{"fixed binary", &arrow.FixedSizeBinaryType{ByteWidth: 2}, BlobDatum(NewBlob([]byte{7, 8}))},
		{"decimal", &arrow.Decimal128Type{Precision: 10, Scale: 3}, DecimalDatum(decimal.RequireFromString("-12.5"))},
		{"date", arrow.FixedWidthTypes.Date32, DateDatum(Date(19723))},
		{"timestamp", &arrow.TimestampType{Unit: arrow.Microsecond}, TimestampDatum(Timestamp(1234567))},
		{"timestamp ltz", &arrow.TimestampType{Unit: arrow.Millisecond, TimeZone: "UTC"}, TimestampLtzDatum(TimestampLtz(98765))},
		{"null", arrow.PrimitiveTypes.Int32, Null()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := array.NewBuilder(mem, tt.dt)
			defer b.Release()

			require.NoError(t, AppendTo(tt.datum, b))
			arr := b.NewArray()
			defer arr.Release()

			require.Equal(t, 1, arr.Len())
			got, err := FromArrow(arr, 0)
			require.NoError(t, err)
			assert.True(t, tt.datum.Equal(got), "want %s got %s", tt.datum, got)
		})
	}
}

func TestAppendToMismatchNamesBothKinds(t *testing.T) {
	mem := memory.NewGoAllocator()
	b := array.NewInt32Builder(mem)
	defer b.Release()

	err := AppendTo(StringDatum("abc"), b)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConversion))
	assert.Contains(t, err.Error(), "String")
	assert.Contains(t, err.Error(), "Int32Builder")

	source, _ := errors.Detail(err, "source")
	target, _ := errors.Detail(err, "target")
	assert.Equal(t, "String", source)
	assert.Equal(t, "Int32Builder", target)
	assert.Equal(t, 0, b.Len(), "failed append must not touch the builder")
}

func TestCheckAppendableRejectsLossyValues(t *testing.T) {
	tests := []struct {
		name  string
		dt    arrow.DataType
		datum Datum
	}{
		{"int64 into int32", arrow.PrimitiveTypes.Int32, Int64Datum(1)},
		{"float64 into float32", arrow.PrimitiveTypes.Float32, Float64Datum(1)},
		{"short fixed binary", &arrow.FixedSizeBinaryType{ByteWidth: 4}, BlobDatum(NewBlob([]byte{1}))},
		{"decimal scale", &arrow.Decimal128Type{Precision: 10, Scale: 1}, DecimalDatum(decimal.RequireFromString("1.25"))},
		{"decimal precision", &arrow.Decimal128Type{Precision: 3, Scale: 0}, DecimalDatum(decimal.NewFromInt(12345))},
		{"ltz into micros", &arrow.TimestampType{Unit: arrow.Microsecond}, TimestampLtzDatum(1)},
		{"timestamp into millis", &arrow.TimestampType{Unit: arrow.Millisecond}, TimestampDatum(1)},
		{"date into int32", arrow.PrimitiveTypes.Int32, DateDatum(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAppendable(tt.datum, tt.dt)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConversion))
		})
	}
}

func TestBuilderName(t *testing.T) {
	assert.Equal(t, "StringBuilder", BuilderName(arrow.BinaryTypes.String))
	assert.Equal(t, "Decimal128Builder", BuilderName(&arrow.Decimal128Type{Precision: 5, Scale: 1}))
}
