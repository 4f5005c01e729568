package http_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/Suministros-api/internal/interfaces/http"
)

const minimalSwagger = `{
	"swagger": "2.0",
	"info": {"title": "Suministros API", "version": "1.0"},
	"basePath": "/",
	"paths": {}
}`

func getStatus(t *testing.T, app *fiber.App, path string) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestUseSwagger_SinArchivoNoMontaDocs(t *testing.T) {
	app := fiber.New()
	mounted := apphttp.UseSwagger(app, filepath.Join(t.TempDir(), "swagger.json"), nil)
	assert.False(t, mounted)
	assert.Equal(t, http.StatusNotFound, getStatus(t, app, "/docs"))
}

func TestUseSwagger_ConArchivoSirveDocs(t *testing.T) {
	file := filepath.Join(t.TempDir(), "swagger.json")
	require.NoError(t, os.WriteFile(file, []byte(minimalSwagger), 0o600))

	app := fiber.New()
	require.True(t, apphttp.UseSwagger(app, file, nil))
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	assert.Equal(t, http.StatusOK, getStatus(t, app, "/docs"))
	assert.Equal(t, http.StatusOK, getStatus(t, app, "/health"), "las demás rutas siguen disponibles")
}
