package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fincherrors.ErrMatterNotFound("m1"), http.StatusNotFound, "MATTER_NOT_FOUND"},
		{"invalid input", fincherrors.ErrInvalidInput("taskId", "is required"), http.StatusBadRequest, "INVALID_INPUT"},
		{"wrapped", wrapErr(fincherrors.ErrMatterExists("m1")), http.StatusConflict, "MATTER_EXISTS"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandleError_Details(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, fincherrors.ErrInvalidInput("name", "must not be blank"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	details := resp["details"].(map[string]any)
	assert.Equal(t, "must not be blank", details["why"])
}

func TestDecodeBody(t *testing.T) {
	var v struct {
		MatterID string `json:"matterId"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"matterId":"m1"}`))
	require.NoError(t, decodeBody(httptest.NewRecorder(), r, &v))
	assert.Equal(t, "m1", v.MatterID)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	err := decodeBody(httptest.NewRecorder(), r, &v)
	require.Error(t, err)
	assert.True(t, fincherrors.HasCode(err, fincherrors.CodeInvalidInput))
	assert.Contains(t, fincherrors.AsFinchError(err).Why, "empty")

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	err = decodeBody(httptest.NewRecorder(), r, &v)
	assert.True(t, fincherrors.HasCode(err, fincherrors.CodeInvalidInput))
}

func TestRequireFields(t *testing.T) {
	assert.NoError(t, requireFields("a", "1", "b", "2"))

	err := requireFields("a", "1", "b", "", "c", "")
	require.Error(t, err)
	assert.Equal(t, "invalid b", fincherrors.AsFinchError(err).What)
}

func wrapErr(err error) error {
	return &wrapped{err: err}
}

type wrapped struct{ err error }

func (w *wrapped) Error() string { return "context: " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }
