package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"adoptipet/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Upsert(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			updated_at = EXCLUDED.updated_at
	`, u.ID, u.Email, u.Name, u.Role, u.CreatedAt, u.UpdatedAt)
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return users.User{}, ErrNotFound
	}

	var u users.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, name, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, ErrNotFound
		}
		return users.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) ListByRole(ctx context.Context, role users.Role) ([]users.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, name, role, created_at, updated_at
		FROM users
		WHERE role = $1
		ORDER BY id ASC
	`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		var u users.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

var _ users.Repository = (*UsersRepo)(nil)
