package http

import (
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Suministros-api/pkg/logger"
)

// UseSwagger monta la UI de Swagger en /docs con el documento OpenAPI de filePath.
// El documento lo genera `go generate ./cmd/api`; si el archivo no existe la UI no se monta
// y devuelve false.
func UseSwagger(app *fiber.App, filePath string, log *logger.Logger) bool {
	if log == nil {
		log = logger.Nop()
	}
	if _, err := os.Stat(filePath); err != nil {
		log.Warn().Str("file", filePath).Msg("swagger.json no encontrado, /docs deshabilitado")
		return false
	}
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: filePath,
		Path:     "docs",
		Title:    "Suministros API",
	}))
	return true
}
