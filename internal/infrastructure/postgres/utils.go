package postgres

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const defaultListLimit = 50

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if code := pgCode(err); code != "" {
		return code == "23505"
	}
	return strings.Contains(err.Error(), "23505")
}

// isCheckViolation 23514, p. ej. quantity >= 0.
func isCheckViolation(err error) bool {
	return pgCode(err) == "23514"
}

// isForeignKeyViolation 23503: ubicación o producto inexistente.
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == "23503"
}

// isLockTimeout 55P03: venció lock_timeout esperando filas bloqueadas.
func isLockTimeout(err error) bool {
	return pgCode(err) == "55P03"
}

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

// validID evita consultar columnas UUID con texto arbitrario (22P02); un id mal formado no existe.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}
