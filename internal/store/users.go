package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"factory_inventory/internal/apperr"
)

const userColumns = `id, name, email, password_hash, role, is_active, img, last_login, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.IsActive, &u.Img, &u.LastLogin, &u.CreatedAt)
	return u, err
}

// GetUser returns one user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound("user", id)
		}
		return User{}, apperr.Persistence("failed to get user", err)
	}
	return u, nil
}

// GetUserByEmail returns one user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound("user", email)
		}
		return User{}, apperr.Persistence("failed to get user", err)
	}
	return u, nil
}

// ListUsers returns all users ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, apperr.Persistence("failed to list users", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperr.Persistence("failed to scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("failed to read users", err)
	}

	return users, nil
}

// CreateUserParams holds the fields of a new account.
type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         int
	Img          *string
}

// CreateUser inserts a new active account.
func (s *Store) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	u := User{
		Name:     params.Name,
		Email:    params.Email,
		Role:     params.Role,
		IsActive: true,
		Img:      params.Img,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role, is_active, img)
		 VALUES ($1, $2, $3, $4, TRUE, $5)
		 RETURNING id, created_at`,
		params.Name, params.Email, params.PasswordHash, params.Role, params.Img,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, apperr.Newf(apperr.KindConflict, "email %q is already registered", params.Email)
		}
		return User{}, apperr.Persistence("failed to create user", err)
	}
	u.PasswordHash = params.PasswordHash
	return u, nil
}

// UpdateUserParams holds the editable fields of an account.
type UpdateUserParams struct {
	Name     string
	Email    string
	Role     int
	IsActive bool
	Img      *string
}

// UpdateUser updates an account's fields.
func (s *Store) UpdateUser(ctx context.Context, id int64, params UpdateUserParams) (User, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET name = $2, email = $3, role = $4, is_active = $5, img = $6
		 WHERE id = $1`,
		id, params.Name, params.Email, params.Role, params.IsActive, params.Img)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, apperr.Newf(apperr.KindConflict, "email %q is already registered", params.Email)
		}
		return User{}, apperr.Persistence("failed to update user", err)
	}
	if tag.RowsAffected() == 0 {
		return User{}, apperr.NotFound("user", id)
	}
	return s.GetUser(ctx, id)
}

// UpdateUserProfile updates the fields a user may change on their own
// account. An empty passwordHash leaves the stored hash untouched.
func (s *Store) UpdateUserProfile(ctx context.Context, id int64, name string, passwordHash string) (User, error) {
	var tag pgconn.CommandTag
	var err error
	if passwordHash != "" {
		tag, err = s.pool.Exec(ctx,
			`UPDATE users SET name = $2, password_hash = $3 WHERE id = $1`,
			id, name, passwordHash)
	} else {
		tag, err = s.pool.Exec(ctx,
			`UPDATE users SET name = $2 WHERE id = $1`, id, name)
	}
	if err != nil {
		return User{}, apperr.Persistence("failed to update profile", err)
	}
	if tag.RowsAffected() == 0 {
		return User{}, apperr.NotFound("user", id)
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes an account. Deleting an already-absent user is not an
// error; deleting the last owner is refused. Role returns the deleted
// user's role so callers can run their permission check, and deleted
// reports whether a row actually went away.
func (s *Store) DeleteUser(ctx context.Context, id int64, ownerRole int) (role int, deleted bool, err error) {
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		scanErr := tx.QueryRow(ctx,
			`SELECT role FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&role)
		if scanErr != nil {
			if errors.Is(scanErr, pgx.ErrNoRows) {
				return nil // already gone
			}
			return apperr.Persistence("failed to get user", scanErr)
		}

		if role == ownerRole {
			var owners int64
			if countErr := tx.QueryRow(ctx,
				`SELECT COUNT(*) FROM users WHERE role = $1`, ownerRole).Scan(&owners); countErr != nil {
				return apperr.Persistence("failed to count owners", countErr)
			}
			if owners <= 1 {
				return apperr.New(apperr.KindConflict, "cannot delete the last owner")
			}
		}

		if _, execErr := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); execErr != nil {
			return apperr.Persistence("failed to delete user", execErr)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return role, deleted, nil
}

// TouchLastLogin records a successful login.
func (s *Store) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	if err != nil {
		return apperr.Persistence("failed to update last login", err)
	}
	return nil
}
