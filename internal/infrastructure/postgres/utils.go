package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/estoque-api/internal/domain"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"

	// texto que no se puede convertir al tipo de la columna (p. ej. un id que no es UUID)
	codeInvalidTextRepresentation = "22P02"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// isForeignKeyViolation verifica si un error es una violación de clave foránea (23503).
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// isInvalidID verifica si Postgres rechazó un parámetro por formato inválido (22P02).
// Los id de las tablas son UUID: un id mal formado equivale a una fila inexistente.
func isInvalidID(err error) bool {
	return pgCode(err) == codeInvalidTextRepresentation
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// pgConstraint devuelve el nombre del constraint que falló, o "" si no es un error de Postgres.
func pgConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// storageErr envuelve un fallo del driver como domain.ErrStorage conservando la causa.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}
