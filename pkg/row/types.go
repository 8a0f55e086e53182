package row

import (
	"strconv"
	"strings"
	"time"
)

// Blob owns its bytes. BlobRef has the same underlying representation and
// is a borrowed view, so converting between them never copies.
type Blob []byte

// BlobRef is a read-only view over bytes owned elsewhere.
type BlobRef []byte

// NewBlob copies b into a new Blob.
func NewBlob(b []byte) Blob {
	out := make(Blob, len(b))
	copy(out, b)
	return out
}

// NewBlobRef reinterprets b as a BlobRef without copying.
func NewBlobRef(b []byte) BlobRef { return BlobRef(b) }

// Ref returns a view over the blob.
func (b Blob) Ref() BlobRef { return BlobRef(b) }

// Bytes returns the blob's underlying bytes.
func (b Blob) Bytes() []byte { return b }

func (b Blob) String() string { return b.Ref().String() }

// Bytes returns the viewed bytes.
func (r BlobRef) Bytes() []byte { return r }

// ToBlob copies the view into an owned Blob.
func (r BlobRef) ToBlob() Blob { return NewBlob(r) }

// String renders the bytes as a decimal list, e.g. [1, 2, 3].
func (r BlobRef) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, c := range r {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(int(c)))
	}
	sb.WriteByte(']')
	return sb.String()
}

const secondsPerDay = 24 * 60 * 60

// Date is the number of days since 1970-01-01.
type Date int32

// DateOf returns the Date for a calendar day.
func DateOf(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date(floorDiv(t.Unix(), secondsPerDay))
}

// DateFromTime truncates t (in UTC) to its calendar day.
func DateFromTime(t time.Time) Date {
	return Date(floorDiv(t.UTC().Unix(), secondsPerDay))
}

// Days returns the epoch day offset.
func (d Date) Days() int32 { return int32(d) }

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

func (d Date) Year() int  { return d.Time().Year() }
func (d Date) Month() int { return int(d.Time().Month()) }
func (d Date) Day() int   { return d.Time().Day() }

func (d Date) String() string { return d.Time().Format(time.DateOnly) }

// Timestamp is microseconds since the epoch, without a time zone.
type Timestamp int64

// TimestampFromTime converts t to microseconds since the epoch.
func TimestampFromTime(t time.Time) Timestamp { return Timestamp(t.UnixMicro()) }

func (ts Timestamp) Micros() int64   { return int64(ts) }
func (ts Timestamp) Time() time.Time { return time.UnixMicro(int64(ts)).UTC() }

func (ts Timestamp) String() string {
	return ts.Time().Format("2006-01-02 15:04:05.999999")
}

// TimestampLtz is milliseconds since the epoch, anchored to UTC and
// rendered in the local session zone by readers.
type TimestampLtz int64

// TimestampLtzFromTime converts t to milliseconds since the epoch.
func TimestampLtzFromTime(t time.Time) TimestampLtz { return TimestampLtz(t.UnixMilli()) }

func (ts TimestampLtz) Millis() int64   { return int64(ts) }
func (ts TimestampLtz) Time() time.Time { return time.UnixMilli(int64(ts)).UTC() }

func (ts TimestampLtz) String() string {
	return ts.Time().Format(time.RFC3339Nano)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
