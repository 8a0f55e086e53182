package row

import (
	"math"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/fluss-go/pkg/errors"
)

func sampleDatums() []Datum {
	return []Datum{
		Null(),
		BoolDatum(false),
		BoolDatum(true),
		Int8Datum(-3),
		Int16Datum(7),
		Int32Datum(1),
		Int32Datum(2),
		Int64Datum(math.MinInt64),
		Int64Datum(0),
		Float32Datum(1.5),
		Float64Datum(math.Inf(-1)),
		Float64Datum(-0.5),
		Float64Datum(2.5),
		Float64Datum(math.NaN()),
		StringDatum(""),
		StringDatum("a"),
		StringDatum("b"),
		BlobDatum(NewBlob([]byte{1})),
		BlobDatum(NewBlob([]byte{1, 2})),
		DecimalDatum(decimal.RequireFromString("-1.25")),
		DecimalDatum(decimal.RequireFromString("10.5")),
		DateDatum(DateOf(2024, time.January, 1)),
		TimestampDatum(Timestamp(10)),
		TimestampLtzDatum(TimestampLtz(10)),
	}
}

func TestCompareWithinKind(t *testing.T) {
	assert.True(t, Int32Datum(1).Less(Int32Datum(2)))
	assert.True(t, StringDatum("a").Less(StringDatum("b")))
	assert.True(t, BoolDatum(false).Less(BoolDatum(true)))
	assert.True(t, DecimalDatum(decimal.RequireFromString("1.10")).Equal(DecimalDatum(decimal.RequireFromString("1.1"))))
	assert.True(t, BlobDatum(NewBlob([]byte{1})).Less(BlobDatum(NewBlob([]byte{1, 0}))))
}

func TestCompareFloatTotalOrder(t *testing.T) {
	nan := Float64Datum(math.NaN())
	assert.True(t, nan.Equal(Float64Datum(math.NaN())))
	assert.True(t, Float64Datum(math.Inf(1)).Less(nan))
	assert.True(t, Float64Datum(math.Copysign(0, -1)).Equal(Float64Datum(0)))
	assert.Equal(t, 1, Compare(nan, Float64Datum(-1)))
}

func TestCompareAcrossKindsFollowsDiscriminant(t *testing.T) {
	assert.True(t, Null().Less(BoolDatum(false)))
	assert.True(t, Int64Datum(math.MaxInt64).Less(Float32Datum(-1)))
	assert.True(t, Int32Datum(100).Less(Int64Datum(-100)))
	assert.True(t, StringDatum("zzz").Less(BlobDatum(NewBlob(nil))))
}

func TestCompareIsStrictTotalOrder(t *testing.T) {
	ds := sampleDatums()

	for _, a := range ds {
		assert.Equal(t, 0, Compare(a, a), "reflexive for %s", a)
		for _, b := range ds {
			assert.Equal(t, -Compare(b, a), Compare(a, b), "antisymmetric for %s, %s", a, b)
			for _, c := range ds {
				if Compare(a, b) < 0 && Compare(b, c) < 0 {
					assert.Negative(t, Compare(a, c), "transitive for %s < %s < %s", a, b, c)
				}
			}
		}
	}

	// sampleDatums is listed in ascending order.
	shuffled := append([]Datum(nil), ds...)
	for i, j := 0, len(shuffled)-1; i < j; i, j = i+1, j-1 {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	sort.Slice(shuffled, func(i, j int) bool { return shuffled[i].Less(shuffled[j]) })
	for i := range ds {
		assert.True(t, ds[i].Equal(shuffled[i]), "position %d: want %s got %s", i, ds[i], shuffled[i])
	}
}

func TestDatumAccessorsRejectOtherKinds(t *testing.T) {
	_, err := StringDatum("x").AsInt32()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConversion))
	expected, _ := errors.Detail(err, "expected")
	actual, _ := errors.Detail(err, "actual")
	assert.Equal(t, "Int32", expected)
	assert.Equal(t, "String", actual)

	_, err = Null().AsBool()
	assert.Error(t, err)

	v, err := Int16Datum(12).AsInt16()
	require.NoError(t, err)
	assert.Equal(t, int16(12), v)
}

func TestDatumOf(t *testing.T) {
	tests := []struct {
		in   interface{}
		kind Kind
	}{
		{nil, KindNull},
		{true, KindBool},
		{int8(1), KindInt8},
		{int16(1), KindInt16},
		{int32(1), KindInt32},
		{int64(1), KindInt64},
		{7, KindInt64},
		{float32(1), KindFloat32},
		{1.0, KindFloat64},
		{"s", KindString},
		{[]byte{1}, KindBlob},
		{decimal.NewFromInt(3), KindDecimal},
		{Date(1), KindDate},
		{Timestamp(1), KindTimestamp},
		{TimestampLtz(1), KindTimestampLtz},
		{time.Unix(0, 0), KindTimestamp},
	}
	for _, tt := range tests {
		d, err := DatumOf(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.kind, d.Kind(), "%T", tt.in)
	}

	_, err := DatumOf(struct{}{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConversion))
}

func TestDatumOfCopiesByteSlices(t *testing.T) {
	raw := []byte{1, 2, 3}
	d := MustDatumOf(raw)
	raw[0] = 9

	ref, err := d.AsBlob()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, ref.Bytes())
}

func TestBorrowStringAliasesBytes(t *testing.T) {
	buf := []byte("abc")
	d := BorrowString(buf)

	s, err := d.AsString()
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	empty, err := BorrowString(nil).AsString()
	require.NoError(t, err)
	assert.Equal(t, "", empty)
}

func TestDatumString(t *testing.T) {
	assert.Equal(t, "null", Null().String())
	assert.Equal(t, "42", Int32Datum(42).String())
	assert.Equal(t, "'abc'", StringDatum("abc").String())
	assert.Equal(t, "[1, 2]", BlobDatum(NewBlob([]byte{1, 2})).String())
	assert.Equal(t, "2024-01-01", DateDatum(Date(19723)).String())
	assert.Equal(t, "1.5", Float32Datum(1.5).String())
}

func TestDateCalendar(t *testing.T) {
	tests := []struct {
		days             int32
		year, month, day int
	}{
		{0, 1970, 1, 1},
		{-1, 1969, 12, 31},
		{19723, 2024, 1, 1},
		{19782, 2024, 2, 29},
	}
	for _, tt := range tests {
		d := Date(tt.days)
		assert.Equal(t, tt.year, d.Year())
		assert.Equal(t, tt.month, d.Month())
		assert.Equal(t, tt.day, d.Day())
		assert.Equal(t, d, DateOf(tt.year, time.Month(tt.month), tt.day))
	}
	assert.Equal(t, Date(-1), DateFromTime(time.Date(1969, 12, 31, 23, 0, 0, 0, time.UTC)))
}

func TestTimestamps(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 9, 123456000, time.UTC)

	ts := TimestampFromTime(at)
	assert.Equal(t, at.UnixMicro(), ts.Micros())
	assert.True(t, at.Equal(ts.Time()))
	assert.Equal(t, "2024-05-06 07:08:09.123456", ts.String())

	ltz := TimestampLtzFromTime(at)
	assert.Equal(t, at.UnixMilli(), ltz.Millis())
	assert.True(t, at.Truncate(time.Millisecond).Equal(ltz.Time()))
}

func TestBlobRefSharesMemory(t *testing.T) {
	b := NewBlob([]byte{4, 5})
	ref := b.Ref()
	b[0] = 6
	assert.Equal(t, byte(6), ref.Bytes()[0])

	owned := ref.ToBlob()
	owned[1] = 0
	assert.Equal(t, byte(5), b[1])
}

func TestDatumJSON(t *testing.T) {
	r := GenericRowOf(
		Int32Datum(42),
		StringDatum("abc"),
		Null(),
		DecimalDatum(decimal.RequireFromString("1.50")),
		Float64Datum(math.NaN()),
		DateDatum(Date(0)),
	)
	out, err := r.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[42,"abc",null,"1.5","NaN","1970-01-01"]`, string(out))
}
