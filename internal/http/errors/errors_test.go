package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrMissingCredentials)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, map[string]any{"error": "Username and password are required."}, decode(t, rec))
}

func TestWriteError_UnknownIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, stderrors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error.", decode(t, rec)["error"])
}

func TestWriteError_WrappedAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	err := New(http.StatusForbidden, "IDP_REJECTED", "Wrong email or password.")
	WriteError(rec, stderrors.Join(stderrors.New("ctx"), err))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Wrong email or password.", decode(t, rec)["error"])
}

func TestWriteError_OutOfRangeStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, New(101, "WEIRD", "x"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = httptest.NewRecorder()
	WriteError(rec, New(http.StatusFound, "IDP_REJECTED", "x"))
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestWithCause_DoesNotMutateBase(t *testing.T) {
	cause := stderrors.New("boom")
	e := ErrInternalServerError.WithCause(cause)
	assert.Nil(t, ErrInternalServerError.Err)
	assert.ErrorIs(t, e, cause)
}
