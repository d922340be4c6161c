package errutil_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/flexigantt/pkg/utils/errutil"
)

func TestHandle(t *testing.T) {
	t.Run("nil error passes through", func(t *testing.T) {
		gt.NoError(t, errutil.Handle(context.Background(), nil, "nothing"))
	})

	t.Run("returns the original error", func(t *testing.T) {
		base := errors.New("boom")
		err := goerr.Wrap(base, "wrapped", goerr.V("key", "value"))
		gt.Error(t, errutil.Handle(context.Background(), err, "failed")).Is(base)
	})
}

func TestHandleHTTP(t *testing.T) {
	w := httptest.NewRecorder()
	errutil.HandleHTTP(context.Background(), w, goerr.New("bad input"), http.StatusBadRequest)

	gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	gt.String(t, w.Body.String()).Contains("bad input")
}
