package database

import (
	"context"

	"github.com/google/uuid"
)

const createUser = `
INSERT INTO users (username, hashed_password, role, is_superuser)
VALUES ($1, $2, $3, $4)
RETURNING id, username, hashed_password, role, is_superuser, created_at
`

type CreateUserParams struct {
	Username       string
	HashedPassword string
	Role           string
	IsSuperuser    bool
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.Username, arg.HashedPassword, arg.Role, arg.IsSuperuser)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.Role, &u.IsSuperuser, &u.CreatedAt)
	return u, err
}

const getUserByUsername = `
SELECT id, username, hashed_password, role, is_superuser, created_at
FROM users
WHERE username = $1
`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByUsername, username)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.Role, &u.IsSuperuser, &u.CreatedAt)
	return u, err
}

const getUserByID = `
SELECT id, username, hashed_password, role, is_superuser, created_at
FROM users
WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.Role, &u.IsSuperuser, &u.CreatedAt)
	return u, err
}
