package pg

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dropDatabas3/johngate/internal/store"
)

func (s *Store) GetByUsername(ctx context.Context, username string) (*store.User, error) {
	const query = `
		SELECT id, username, first_name, last_name, email, password_hash, created_at, updated_at
		FROM app_user WHERE username = $1
	`
	var (
		u  store.User
		id uuid.UUID
	)
	err := s.pool.QueryRow(ctx, query, username).Scan(
		&id, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	u.ID = id.String()
	return &u, nil
}

func (s *Store) Create(ctx context.Context, u store.User) (*store.User, error) {
	id := uuid.New()
	if u.ID != "" {
		parsed, err := uuid.Parse(u.ID)
		if err != nil {
			return nil, fmt.Errorf("pg: invalid user id: %w", err)
		}
		id = parsed
	}
	const query = `
		INSERT INTO app_user (id, username, first_name, last_name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := s.pool.QueryRow(ctx, query, id, u.Username, u.FirstName, u.LastName, u.Email, u.PasswordHash).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, fmt.Errorf("pg: create user: %w", err)
	}
	u.ID = id.String()
	return &u, nil
}

func (s *Store) UpdateProfile(ctx context.Context, username string, upd store.ProfileUpdate) error {
	if upd.Empty() {
		return nil
	}
	sets := make([]string, 0, 4)
	args := make([]any, 0, 4)
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	add("first_name", upd.FirstName)
	add("last_name", upd.LastName)
	add("email", upd.Email)
	args = append(args, username)

	query := "UPDATE app_user SET " + strings.Join(sets, ", ") +
		", updated_at = NOW() WHERE username = $" + strconv.Itoa(len(args))
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("pg: update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SetPassword(ctx context.Context, username, hash string) error {
	const query = `UPDATE app_user SET password_hash = $1, updated_at = NOW() WHERE username = $2`
	tag, err := s.pool.Exec(ctx, query, hash, username)
	if err != nil {
		return fmt.Errorf("pg: set password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
