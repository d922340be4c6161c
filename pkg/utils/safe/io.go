package safe

import (
	"context"
	"fmt"
	"io"

	"github.com/secmon-lab/flexigantt/pkg/utils/logging"
)

// maxDrain bounds how much of an unread body DrainClose discards
const maxDrain = 64 << 10

// Close closes c and logs a failure. A nil closer is ignored.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("failed to close resource",
			"resource", fmt.Sprintf("%T", c),
			"error", err.Error(),
		)
	}
}

// DrainClose discards what is left of rc, up to 64KiB, then closes it. Used
// on HTTP response bodies so the connection can be reused.
func DrainClose(ctx context.Context, rc io.ReadCloser) {
	if rc == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, rc, maxDrain)
	Close(ctx, rc)
}

// Write writes data to w. A failed or short write is logged; the response is
// already committed at that point.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	n, err := w.Write(data)
	if err != nil {
		logging.From(ctx).Warn("failed to write response",
			"written", n,
			"size", len(data),
			"error", err.Error(),
		)
	}
}

// Copy streams src into dst and returns the number of bytes copied. A failure
// is logged with the partial count.
func Copy(ctx context.Context, dst io.Writer, src io.Reader) int64 {
	n, err := io.Copy(dst, src)
	if err != nil {
		logging.From(ctx).Warn("failed to copy stream",
			"written", n,
			"error", err.Error(),
		)
	}
	return n
}
