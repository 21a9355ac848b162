package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vytor/stormstats/internal/errors"
	"github.com/vytor/stormstats/internal/replay"
)

func TestFromReplay(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{name: "not found", err: &replay.Error{Kind: replay.KindNotFound}, code: errors.ErrCodeNotFound, status: http.StatusNotFound},
		{name: "invalid format", err: &replay.Error{Kind: replay.KindInvalidFormat}, code: errors.ErrCodeValidation, status: http.StatusBadRequest},
		{name: "too small", err: &replay.Error{Kind: replay.KindTooSmall}, code: errors.ErrCodeValidation, status: http.StatusBadRequest},
		{name: "too large", err: &replay.Error{Kind: replay.KindTooLarge}, code: errors.ErrCodePayloadTooLarge, status: http.StatusRequestEntityTooLarge},
		{name: "header", err: &replay.Error{Kind: replay.KindHeaderUnreadable}, code: errors.ErrCodeUnprocessable, status: http.StatusUnprocessableEntity},
		{name: "status", err: &replay.Error{Kind: replay.KindDecodeStatus, Status: replay.StatusDuplicate}, code: errors.ErrCodeUnprocessable, status: http.StatusUnprocessableEntity},
		{name: "wrapped", err: fmt.Errorf("job: %w", &replay.Error{Kind: replay.KindDecodeException}), code: errors.ErrCodeUnprocessable, status: http.StatusUnprocessableEntity},
		{name: "plain", err: stderrors.New("boom"), code: errors.ErrCodeInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.FromReplay(tt.err)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.status, got.Status)
		})
	}
}

func TestFromReplay_KeepsMessageAndDetail(t *testing.T) {
	got := errors.FromReplay(&replay.Error{Kind: replay.KindDecodeException, Message: "analysis failed: x", Detail: "x"})

	assert.Equal(t, "analysis failed: x", got.Message)
	assert.Equal(t, "x", got.Detail)
}

func TestFromReplay_PassesAppErrorThrough(t *testing.T) {
	appErr := errors.NewBadRequestError("missing file")
	assert.Same(t, appErr, errors.FromReplay(fmt.Errorf("wrap: %w", appErr)))
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("disk")
	err := errors.NewInternalError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "INTERNAL_ERROR: internal server error (disk)", err.Error())
}
