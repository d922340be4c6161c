package safe_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/flexigantt/pkg/utils/safe"
)

type body struct {
	io.Reader
	closed   bool
	closeErr error
}

func (b *body) Close() error {
	b.closed = true
	return b.closeErr
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	safe.Close(ctx, nil)

	b := &body{Reader: strings.NewReader(""), closeErr: errors.New("already closed")}
	safe.Close(ctx, b)
	gt.Bool(t, b.closed).True()
}

func TestDrainClose(t *testing.T) {
	b := &body{Reader: strings.NewReader("unread response")}
	safe.DrainClose(context.Background(), b)
	gt.Bool(t, b.closed).True()

	rest, err := io.ReadAll(b.Reader)
	gt.NoError(t, err)
	gt.Array(t, rest).Length(0)
}

func TestWrite(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	safe.Write(ctx, &buf, []byte("ok"))
	gt.Value(t, buf.String()).Equal("ok")

	safe.Write(ctx, failingWriter{}, []byte("lost"))
	safe.Write(ctx, nil, []byte("ignored"))
}

func TestCopy(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	n := safe.Copy(ctx, &buf, strings.NewReader("workbook"))
	gt.Value(t, n).Equal(int64(8))
	gt.Value(t, buf.String()).Equal("workbook")

	gt.Value(t, safe.Copy(ctx, failingWriter{}, strings.NewReader("x"))).Equal(int64(0))
}
