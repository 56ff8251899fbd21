package entity

import "time"

// Niveles de acceso válidos para User.
const (
	AccessLevelAdmin = "admin"
	AccessLevelUser  = "usuario"
)

// User representa un usuario del sistema: actor de los movimientos y destinatario de alertas.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	AccessLevel  string // admin, usuario
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValidAccessLevel indica si el nivel de acceso es conocido.
func IsValidAccessLevel(level string) bool {
	return level == AccessLevelAdmin || level == AccessLevelUser
}
