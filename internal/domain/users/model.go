package users

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User es el perfil local de una identidad verificada por el token.
// El ID es el subject del token; no se generan IDs propios.
type User struct {
	ID    string
	Email string
	Name  string
	Role  Role

	CreatedAt time.Time
	UpdatedAt time.Time
}
