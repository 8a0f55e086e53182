package row

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/fluss-go/pkg/errors"
)

// InternalRow is typed, by-position read access to one record.
//
// Every getter fails with a validation error when pos is outside
// [0, FieldCount()) and with a conversion error when the stored value is of
// a different kind than requested. Null values only satisfy IsNullAt and
// GetDatum.
type InternalRow interface {
	// FieldCount returns the number of fields in this row
	FieldCount() int

	// IsNullAt reports whether the field at pos is null
	IsNullAt(pos int) (bool, error)

	// GetDatum returns the raw value at pos
	GetDatum(pos int) (Datum, error)

	GetBoolean(pos int) (bool, error)
	GetByte(pos int) (int8, error)
	GetShort(pos int) (int16, error)
	GetInt(pos int) (int32, error)
	GetLong(pos int) (int64, error)
	GetFloat(pos int) (float32, error)
	GetDouble(pos int) (float64, error)

	// GetChar returns the string at pos; it must be at most length runes
	GetChar(pos int, length int) (string, error)
	GetString(pos int) (string, error)

	GetDecimal(pos int, precision, scale int32) (decimal.Decimal, error)
	GetDate(pos int) (Date, error)
	GetTimestampNtz(pos int) (Timestamp, error)
	GetTimestampLtz(pos int) (TimestampLtz, error)

	// GetBinary returns the bytes at pos; BINARY(length) is fixed width, so
	// they must be exactly length bytes
	GetBinary(pos int, length int) ([]byte, error)
	GetBytes(pos int) ([]byte, error)
}

// GenericRow is an InternalRow backed by a fixed-size slice of datums.
type GenericRow struct {
	values []Datum
}

var _ InternalRow = (*GenericRow)(nil)

// NewGenericRow returns a row with fieldCount null fields.
func NewGenericRow(fieldCount int) *GenericRow {
	if fieldCount < 0 {
		fieldCount = 0
	}
	return &GenericRow{values: make([]Datum, fieldCount)}
}

// GenericRowOf returns a row holding values in order.
func GenericRowOf(values ...Datum) *GenericRow {
	r := NewGenericRow(len(values))
	copy(r.values, values)
	return r
}

// SetField replaces the value at pos. Fields may be set in any order.
func (r *GenericRow) SetField(pos int, value Datum) error {
	if err := r.checkPos(pos); err != nil {
		return err
	}
	r.values[pos] = value
	return nil
}

// SetValue converts v with DatumOf and stores it at pos.
func (r *GenericRow) SetValue(pos int, v interface{}) error {
	d, err := DatumOf(v)
	if err != nil {
		return err
	}
	return r.SetField(pos, d)
}

// Values returns a copy of the row's datums.
func (r *GenericRow) Values() []Datum {
	out := make([]Datum, len(r.values))
	copy(out, r.values)
	return out
}

// Equal reports whether both rows hold equal datums position by position.
func (r *GenericRow) Equal(o *GenericRow) bool {
	if len(r.values) != len(o.values) {
		return false
	}
	for i := range r.values {
		if !r.values[i].Equal(o.values[i]) {
			return false
		}
	}
	return true
}

func (r *GenericRow) String() string {
	s := "("
	for i, v := range r.values {
		if i > 0 {
			s += ", "
		}
		s += v.String()
	}
	return s + ")"
}

func (r *GenericRow) FieldCount() int { return len(r.values) }

func (r *GenericRow) checkPos(pos int) error {
	if pos < 0 || pos >= len(r.values) {
		return errors.Newf(errors.ErrorTypeValidation, "position %d out of range [0, %d)", pos, len(r.values)).
			WithDetail("pos", pos).
			WithDetail("field_count", len(r.values))
	}
	return nil
}

func (r *GenericRow) GetDatum(pos int) (Datum, error) {
	if err := r.checkPos(pos); err != nil {
		return Null(), err
	}
	return r.values[pos], nil
}

func (r *GenericRow) IsNullAt(pos int) (bool, error) {
	d, err := r.GetDatum(pos)
	if err != nil {
		return false, err
	}
	return d.IsNull(), nil
}

func (r *GenericRow) GetBoolean(pos int) (bool, error) {
	d, err := r.GetDatum(pos)
	if err != nil {
		return false, err
	}
	return d.AsBool()
}

func (r *GenericRow) GetByte(pos int) (int8, error) {
	d, err := r.GetDatum(pos)
	if err != nil {
		return 0, err
	}
	return d.AsInt8()
}

func (r *GenericRow) GetShort(pos int) (int16, error) {
	d, err := r.GetDatum(pos)
	if err != nil {
		return 0, err
	}
	return d.AsInt16()
}

func (r *GenericRow) GetInt(pos int) (int32, error) {
	d, err := r.GetDatum(pos)
	if err != nil {
		return 0, err
	}
	return d.AsInt32()
}

func (r *GenericRow) GetLong(pos int) (int64, error) {
	d, err := r.GetDatum(pos)
	if err != nil {
		return 0, err
	}
	return d.AsInt64()
}

func (r *GenericRow) GetFloat(pos int) (float32, error) {
	d, err := r.GetDatum(pos)
	if err != nil {
		return 0, err
	}
	return d.AsFloat32()
}

func (r *GenericRow) GetDouble(pos int) (float64, error) {
	d, err := r.GetDatum(pos)
	if err != nil {
		return 0, err
	}
	return d.AsFloat64()
}

func (r *GenericRow) GetChar(pos int, length int) (string, error) {
	s, err := r.GetString(pos)
	if err != nil {
		return "", err
	}
	if n := utf8.RuneCountInString(s); n > length {
		return "", errors.Newf(errors.ErrorTypeValidation, "char value of %d runes exceeds CHAR(%d)", n, length).
			WithDetail("pos", pos)
	}
	return s, nil
}

func (r *GenericRow) GetString(pos int) (string, error) {
	d, err := r.GetDatum(pos)
	if err != nil {
		return "", err
	}
	return d.AsString()
}

func (r *GenericRow) GetDecimal(pos int, precision, scale int32) (decimal.Decimal, error) {
	d, err := r.GetDatum(pos)
	if err != nil {
		return decimal.Decimal{}, err
	}
	v, err := d.AsDecimal()
	if err != nil {
		return decimal.Decimal{}, err
	}
	if err := checkDecimal(v, precision, scale); err != nil {
		return decimal.Decimal{}, err
	}
	return v, nil
}

func (r *GenericRow) GetDate(pos int) (Date, error) {
	d, err := r.GetDatum(pos)
	if err != nil {
		return 0, err
	}
	return d.AsDate()
}

func (r *GenericRow) GetTimestampNtz(pos int) (Timestamp, error) {
	d, err := r.GetDatum(pos)
	if err != nil {
		return 0, err
	}
	return d.AsTimestamp()
}

func (r *GenericRow) GetTimestampLtz(pos int) (TimestampLtz, error) {
	d, err := r.GetDatum(pos)
	if err != nil {
		return 0, err
	}
	return d.AsTimestampLtz()
}

func (r *GenericRow) GetBinary(pos int, length int) ([]byte, error) {
	b, err := r.GetBytes(pos)
	if err != nil {
		return nil, err
	}
	if len(b) != length {
		return nil, errors.Newf(errors.ErrorTypeValidation, "binary value of %d bytes does not fit BINARY(%d)", len(b), length).
			WithDetail("pos", pos)
	}
	return b, nil
}

// GetBytes returns the blob at pos without copying.
func (r *GenericRow) GetBytes(pos int) ([]byte, error) {
	d, err := r.GetDatum(pos)
	if err != nil {
		return nil, err
	}
	ref, err := d.AsBlob()
	if err != nil {
		return nil, err
	}
	return ref.Bytes(), nil
}
