package http

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// parseBody decodifica el JSON en dest y valida sus tags. Con optional, un cuerpo vacío es válido.
func parseBody(c *fiber.Ctx, dest any, optional bool) error {
	if len(c.Body()) == 0 {
		if optional {
			return nil
		}
		return fmt.Errorf("%w: cuerpo requerido", domain.ErrValidation)
	}
	if err := c.BodyParser(dest); err != nil {
		return fmt.Errorf("%w: cuerpo inválido: %v", domain.ErrValidation, err)
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	details := make([]string, 0, len(errs))
	for _, fe := range errs {
		details = append(details, fieldPath(fe)+" "+validationMessage(fe))
	}
	sort.Strings(details)
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(details, "; "))
}

// fieldPath quita el nombre del struct raíz: "CreateFolioRequest.items[0].quantity" → "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "min":
		return fmt.Sprintf("debe ser al menos %s", fe.Param())
	case "max":
		return fmt.Sprintf("debe ser como máximo %s", fe.Param())
	case "gt":
		return fmt.Sprintf("debe ser mayor que %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("debe ser uno de [%s]", fe.Param())
	case "nefield":
		return fmt.Sprintf("debe ser distinto de %s", fe.Param())
	}
	return "es inválido"
}

// parsePage lee limit/offset de la query con los valores por defecto de dto.PageRequest.
func parsePage(c *fiber.Ctx) (dto.PageRequest, error) {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return page, fmt.Errorf("%w: paginación inválida", domain.ErrValidation)
	}
	page.DefaultPage()
	if err := validate.Struct(page); err != nil {
		return page, formatValidationErrors(err)
	}
	return page, nil
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}
