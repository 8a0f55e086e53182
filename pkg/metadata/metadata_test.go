package metadata

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/fluss-go/pkg/errors"
)

func TestParseTablePath(t *testing.T) {
	tests := []struct {
		in      string
		want    TablePath
		wantErr bool
	}{
		{in: "db.orders", want: NewTablePath("db", "orders")},
		{in: "t", want: NewTablePath("fluss", "t")},
		{in: "", wantErr: true},
		{in: ".t", wantErr: true},
		{in: "db.", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTablePath(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "db.orders", NewTablePath("db", "orders").String())
}

func TestToArrowSchema(t *testing.T) {
	rt := NewRowType(
		Field("id", Int().NotNull()),
		Field("name", String()),
		Field("price", Decimal(10, 2)),
		Field("day", Date()),
		Field("at", Timestamp()),
		Field("seen", TimestampLtz()),
		Field("digest", Binary(16)),
	)

	schema, err := rt.ToArrowSchema()
	require.NoError(t, err)
	require.Equal(t, 7, len(schema.Fields()))

	assert.Equal(t, arrow.INT32, schema.Field(0).Type.ID())
	assert.False(t, schema.Field(0).Nullable)
	assert.Equal(t, arrow.STRING, schema.Field(1).Type.ID())
	assert.True(t, schema.Field(1).Nullable)
	assert.Equal(t, &arrow.Decimal128Type{Precision: 10, Scale: 2}, schema.Field(2).Type)
	assert.Equal(t, arrow.DATE32, schema.Field(3).Type.ID())
	assert.Equal(t, arrow.Microsecond, schema.Field(4).Type.(*arrow.TimestampType).Unit)
	assert.Equal(t, "UTC", schema.Field(5).Type.(*arrow.TimestampType).TimeZone)
	assert.Equal(t, 16, schema.Field(6).Type.(*arrow.FixedSizeBinaryType).ByteWidth)
}

func TestToArrowSchemaRejectsInvalidTypes(t *testing.T) {
	_, err := NewRowType().ToArrowSchema()
	require.Error(t, err)

	_, err = NewRowType(Field("d", Decimal(40, 2))).ToArrowSchema()
	require.Error(t, err)

	_, err = NewRowType(Field("b", Binary(0))).ToArrowSchema()
	require.Error(t, err)
}

func TestDataTypeString(t *testing.T) {
	assert.Equal(t, "DECIMAL(10, 2)", Decimal(10, 2).String())
	assert.Equal(t, "CHAR(3) NOT NULL", Char(3).NotNull().String())
	assert.Equal(t, "TIMESTAMP_LTZ", TimestampLtz().String())
}
