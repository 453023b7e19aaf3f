package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "storefront/pkg/errors"
)

func render(t *testing.T, fn func(c echo.Context) error) (int, Response) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, fn(c))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestSuccessEnvelope(t *testing.T) {
	status, body := render(t, func(c echo.Context) error {
		return Created(c, map[string]string{"id": "o1"})
	})

	assert.Equal(t, http.StatusCreated, status)
	assert.True(t, body.Success)
	assert.Nil(t, body.Error)
	assert.NotEmpty(t, body.Timestamp)
}

func TestErrorMapsAppError(t *testing.T) {
	status, body := render(t, func(c echo.Context) error {
		return Error(c, fmt.Errorf("wrapped: %w", apperrors.NotFound("Order", nil)))
	})

	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.Equal(t, "Order not found", body.Error.Message)
}

func TestErrorHidesUnexpectedErrors(t *testing.T) {
	status, body := render(t, func(c echo.Context) error {
		return Error(c, fmt.Errorf("connection reset by peer"))
	})

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "An unexpected error occurred", body.Error.Message)
}

func TestErrorMapsEchoHTTPError(t *testing.T) {
	status, body := render(t, func(c echo.Context) error {
		return Error(c, echo.NewHTTPError(http.StatusForbidden, "Admin privileges required"))
	})

	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)
	assert.Equal(t, "Admin privileges required", body.Error.Message)
}
