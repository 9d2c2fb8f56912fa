package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestMarkedErrorsKeepTheirClass(t *testing.T) {
	sentinel := stderrors.New("device not found")

	err := WithError(sentinel).
		WithHint("Device not found").
		WithReportableDetails(map[string]any{"device_id": "dev_1"}).
		Mark(ErrNotFound)

	assert.True(t, IsNotFound(err))
	assert.True(t, errors.Is(err, sentinel))
	assert.False(t, IsPermissionDenied(err))
	assert.Equal(t, http.StatusNotFound, HTTPStatusFromErr(err))
	assert.Equal(t, ErrCodeNotFound, CodeFromErr(err))
	assert.Contains(t, errors.GetAllHints(err), "Device not found")
}

func TestAuthorityClassWinsOverWrappedCause(t *testing.T) {
	cause := NewError("connection refused").Mark(ErrHTTPClient)
	err := WithError(cause).WithHint("Authority submission failed").Mark(ErrAuthoritySubmission)

	assert.True(t, IsAuthoritySubmission(err))
	assert.True(t, IsHTTPClient(err))
	assert.Equal(t, http.StatusBadGateway, HTTPStatusFromErr(err))
	assert.Equal(t, ErrCodeAuthoritySubmission, CodeFromErr(err))
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"forbidden", NewError("x").Mark(ErrPermissionDenied), http.StatusForbidden},
		{"disabled", NewError("x").Mark(ErrDisabled), http.StatusForbidden},
		{"no credential", NewError("x").Mark(ErrNoSigningCredential), http.StatusServiceUnavailable},
		{"not implemented", NewError("x").Mark(ErrNotImplemented), http.StatusNotImplemented},
		{"validation", NewError("x").Mark(ErrValidation), http.StatusBadRequest},
		{"unclassified", stderrors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromErr(tt.err))
		})
	}
}
