package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autosocial/internal/models"
)

func renderVia(t *testing.T, err error) (int, string) {
	t.Helper()
	app := fiber.New()
	app.Get("/fail", func(c *fiber.Ctx) error {
		return renderError(c, err)
	})

	resp, aerr := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.NoError(t, aerr)
	body, aerr := io.ReadAll(resp.Body)
	require.NoError(t, aerr)
	return resp.StatusCode, string(body)
}

func TestRenderError(t *testing.T) {
	t.Run("ownership mismatch renders exactly like not found", func(t *testing.T) {
		notFoundStatus, notFoundBody := renderVia(t, models.ErrNotFound)
		deniedStatus, deniedBody := renderVia(t, models.ErrAccessDenied)

		assert.Equal(t, fiber.StatusNotFound, notFoundStatus)
		assert.Equal(t, notFoundStatus, deniedStatus)
		assert.Equal(t, notFoundBody, deniedBody)
	})

	t.Run("validation messages are echoed", func(t *testing.T) {
		status, body := renderVia(t, models.NewValidationError("content is required"))
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Contains(t, body, "content is required")
	})

	t.Run("internal causes are not echoed", func(t *testing.T) {
		status, body := renderVia(t, models.ErrStoreWrite)
		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.NotContains(t, body, models.ErrStoreWrite.Error())
	})

	t.Run("timeout maps to gateway timeout", func(t *testing.T) {
		status, _ := renderVia(t, models.ErrUpstreamTimeout)
		assert.Equal(t, fiber.StatusGatewayTimeout, status)
	})
}
