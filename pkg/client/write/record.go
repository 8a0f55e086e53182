package write

import (
	"context"

	"github.com/ajitpratap0/fluss-go/pkg/broadcast"
	"github.com/ajitpratap0/fluss-go/pkg/metadata"
	"github.com/ajitpratap0/fluss-go/pkg/row"
)

// WriteRecord is one row destined for a table.
type WriteRecord struct {
	TablePath metadata.TablePath
	Row       row.InternalRow
}

// NewWriteRecord pairs a row with its table.
func NewWriteRecord(tablePath metadata.TablePath, r row.InternalRow) *WriteRecord {
	return &WriteRecord{TablePath: tablePath, Row: r}
}

// ResultHandle observes the batch-level outcome of one appended record. It
// stays valid after the batch that issued it is discarded.
type ResultHandle struct {
	receiver broadcast.Receiver[error]
}

func newResultHandle(r broadcast.Receiver[error]) *ResultHandle {
	return &ResultHandle{receiver: r}
}

// Wait blocks until the batch completes or ctx is done. It returns nil on
// success, the completion error on failure, broadcast.ErrDropped if the
// batch was released first, or ctx.Err().
func (h *ResultHandle) Wait(ctx context.Context) error {
	v, err := h.receiver.Receive(ctx)
	if err != nil {
		return err
	}
	return v
}

// Peek reports whether the outcome is known, and if so the error Wait would
// return. It never blocks.
func (h *ResultHandle) Peek() (done bool, err error) {
	res, ok := h.receiver.Peek()
	if !ok {
		return false, nil
	}
	if res.Err != nil {
		return true, res.Err
	}
	return true, res.Value
}

// Done returns a channel closed once the outcome is known.
func (h *ResultHandle) Done() <-chan struct{} {
	return h.receiver.Done()
}
