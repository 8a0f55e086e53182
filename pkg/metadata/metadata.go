// Package metadata describes tables, buckets and row types as seen by the
// client write path.
package metadata

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/ajitpratap0/fluss-go/pkg/errors"
)

// BucketID identifies a bucket (partition) within a table.
type BucketID = int32

// TablePath identifies a table by database and table name.
type TablePath struct {
	Database string
	Table    string
}

// NewTablePath returns the path for database.table.
func NewTablePath(database, table string) TablePath {
	return TablePath{Database: database, Table: table}
}

// ParseTablePath parses "db.table". A bare name maps to the "fluss" database.
func ParseTablePath(s string) (TablePath, error) {
	if s == "" {
		return TablePath{}, errors.New(errors.ErrorTypeValidation, "empty table path")
	}
	db, table, ok := strings.Cut(s, ".")
	if !ok {
		return NewTablePath("fluss", s), nil
	}
	if db == "" || table == "" {
		return TablePath{}, errors.Newf(errors.ErrorTypeValidation, "invalid table path %q", s)
	}
	return NewTablePath(db, table), nil
}

func (p TablePath) String() string {
	if p.Database == "" {
		return p.Table
	}
	return p.Database + "." + p.Table
}

// TypeRoot is the logical root of a DataType.
type TypeRoot int

const (
	TypeBoolean TypeRoot = iota
	TypeTinyInt
	TypeSmallInt
	TypeInt
	TypeBigInt
	TypeFloat
	TypeDouble
	TypeChar
	TypeString
	TypeDecimal
	TypeDate
	TypeTimestamp
	TypeTimestampLtz
	TypeBinary
	TypeBytes
)

var typeRootNames = [...]string{
	TypeBoolean:      "BOOLEAN",
	TypeTinyInt:      "TINYINT",
	TypeSmallInt:     "SMALLINT",
	TypeInt:          "INT",
	TypeBigInt:       "BIGINT",
	TypeFloat:        "FLOAT",
	TypeDouble:       "DOUBLE",
	TypeChar:         "CHAR",
	TypeString:       "STRING",
	TypeDecimal:      "DECIMAL",
	TypeDate:         "DATE",
	TypeTimestamp:    "TIMESTAMP",
	TypeTimestampLtz: "TIMESTAMP_LTZ",
	TypeBinary:       "BINARY",
	TypeBytes:        "BYTES",
}

func (r TypeRoot) String() string {
	if r >= 0 && int(r) < len(typeRootNames) {
		return typeRootNames[r]
	}
	return fmt.Sprintf("TypeRoot(%d)", int(r))
}

// DataType is a column type. Length applies to CHAR and BINARY, Precision
// and Scale to DECIMAL.
type DataType struct {
	Root      TypeRoot
	Length    int
	Precision int32
	Scale     int32
	Nullable  bool
}

func Boolean() DataType      { return DataType{Root: TypeBoolean, Nullable: true} }
func TinyInt() DataType      { return DataType{Root: TypeTinyInt, Nullable: true} }
func SmallInt() DataType     { return DataType{Root: TypeSmallInt, Nullable: true} }
func Int() DataType          { return DataType{Root: TypeInt, Nullable: true} }
func BigInt() DataType       { return DataType{Root: TypeBigInt, Nullable: true} }
func Float() DataType        { return DataType{Root: TypeFloat, Nullable: true} }
func Double() DataType       { return DataType{Root: TypeDouble, Nullable: true} }
func String() DataType       { return DataType{Root: TypeString, Nullable: true} }
func Date() DataType         { return DataType{Root: TypeDate, Nullable: true} }
func Timestamp() DataType    { return DataType{Root: TypeTimestamp, Nullable: true} }
func TimestampLtz() DataType { return DataType{Root: TypeTimestampLtz, Nullable: true} }
func Bytes() DataType        { return DataType{Root: TypeBytes, Nullable: true} }

// Char is a fixed-length character type.
func Char(length int) DataType {
	return DataType{Root: TypeChar, Length: length, Nullable: true}
}

// Binary is a fixed-length binary type.
func Binary(length int) DataType {
	return DataType{Root: TypeBinary, Length: length, Nullable: true}
}

// Decimal is an exact numeric with the given precision and scale.
func Decimal(precision, scale int32) DataType {
	return DataType{Root: TypeDecimal, Precision: precision, Scale: scale, Nullable: true}
}

// NotNull returns a copy of t that rejects nulls.
func (t DataType) NotNull() DataType {
	t.Nullable = false
	return t
}

func (t DataType) String() string {
	var s string
	switch t.Root {
	case TypeChar, TypeBinary:
		s = fmt.Sprintf("%s(%d)", t.Root, t.Length)
	case TypeDecimal:
		s = fmt.Sprintf("%s(%d, %d)", t.Root, t.Precision, t.Scale)
	default:
		s = t.Root.String()
	}
	if !t.Nullable {
		s += " NOT NULL"
	}
	return s
}

// ArrowType maps t to the Arrow type used on the wire.
func (t DataType) ArrowType() (arrow.DataType, error) {
	switch t.Root {
	case TypeBoolean:
		return arrow.FixedWidthTypes.Boolean, nil
	case TypeTinyInt:
		return arrow.PrimitiveTypes.Int8, nil
	case TypeSmallInt:
		return arrow.PrimitiveTypes.Int16, nil
	case TypeInt:
		return arrow.PrimitiveTypes.Int32, nil
	case TypeBigInt:
		return arrow.PrimitiveTypes.Int64, nil
	case TypeFloat:
		return arrow.PrimitiveTypes.Float32, nil
	case TypeDouble:
		return arrow.PrimitiveTypes.Float64, nil
	case TypeChar, TypeString:
		return arrow.BinaryTypes.String, nil
	case TypeDecimal:
		if t.Precision < 1 || t.Precision > 38 || t.Scale < 0 || t.Scale > t.Precision {
			return nil, errors.Newf(errors.ErrorTypeValidation, "invalid decimal(%d, %d)", t.Precision, t.Scale)
		}
		return &arrow.Decimal128Type{Precision: t.Precision, Scale: t.Scale}, nil
	case TypeDate:
		return arrow.FixedWidthTypes.Date32, nil
	case TypeTimestamp:
		return &arrow.TimestampType{Unit: arrow.Microsecond}, nil
	case TypeTimestampLtz:
		return &arrow.TimestampType{Unit: arrow.Millisecond, TimeZone: "UTC"}, nil
	case TypeBinary:
		if t.Length <= 0 {
			return nil, errors.Newf(errors.ErrorTypeValidation, "invalid binary length %d", t.Length)
		}
		return &arrow.FixedSizeBinaryType{ByteWidth: t.Length}, nil
	case TypeBytes:
		return arrow.BinaryTypes.Binary, nil
	default:
		return nil, errors.Newf(errors.ErrorTypeValidation, "unsupported data type %s", t)
	}
}

// DataField is a named column.
type DataField struct {
	Name string
	Type DataType
}

// RowType is the ordered list of columns of a table.
type RowType struct {
	Fields []DataField
}

// NewRowType builds a RowType from fields.
func NewRowType(fields ...DataField) RowType {
	return RowType{Fields: fields}
}

// Field is shorthand for a DataField literal.
func Field(name string, t DataType) DataField {
	return DataField{Name: name, Type: t}
}

// FieldCount returns the number of columns.
func (r RowType) FieldCount() int {
	return len(r.Fields)
}

// ToArrowSchema converts the row type into an Arrow schema.
func (r RowType) ToArrowSchema() (*arrow.Schema, error) {
	if len(r.Fields) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "row type has no fields")
	}
	fields := make([]arrow.Field, len(r.Fields))
	for i, f := range r.Fields {
		at, err := f.Type.ArrowType()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "failed to convert field "+f.Name)
		}
		fields[i] = arrow.Field{Name: f.Name, Type: at, Nullable: f.Type.Nullable}
	}
	return arrow.NewSchema(fields, nil), nil
}
