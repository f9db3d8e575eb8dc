package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/johngate/internal/store"
)

func (s *Store) GetByUsername(ctx context.Context, username string) (*store.User, error) {
	var (
		u                store.User
		created, updated int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, first_name, last_name, email, password_hash, created_at, updated_at
		FROM app_user WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get user: %w", err)
	}
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)
	return &u, nil
}

func (s *Store) Create(ctx context.Context, u store.User) (*store.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_user (id, username, first_name, last_name, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.FirstName, u.LastName, u.Email, u.PasswordHash, toMillis(now), toMillis(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, fmt.Errorf("sqlite: create user: %w", err)
	}
	return &u, nil
}

func (s *Store) UpdateProfile(ctx context.Context, username string, upd store.ProfileUpdate) error {
	if upd.Empty() {
		return nil
	}
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	for _, f := range []struct {
		col string
		v   *string
	}{
		{"first_name", upd.FirstName},
		{"last_name", upd.LastName},
		{"email", upd.Email},
	} {
		if f.v != nil {
			sets = append(sets, f.col+" = ?")
			args = append(args, *f.v)
		}
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, toMillis(time.Now()), username)

	res, err := s.db.ExecContext(ctx,
		"UPDATE app_user SET "+strings.Join(sets, ", ")+" WHERE username = ?", args...)
	if err != nil {
		return fmt.Errorf("sqlite: update profile: %w", err)
	}
	return requireRow(res)
}

func (s *Store) SetPassword(ctx context.Context, username, hash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE app_user SET password_hash = ?, updated_at = ? WHERE username = ?`,
		hash, toMillis(time.Now()), username)
	if err != nil {
		return fmt.Errorf("sqlite: set password: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
