package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/boutique/internal/record"
)

const userColumns = `id, username, password, role, created_at`

// AddUser validates and inserts a user. The password is stored as a bcrypt
// hash. A duplicate id or username returns a *ConstraintError.
func (s *Store) AddUser(ctx context.Context, u record.User) error {
	u.Normalize()
	if err := u.Validate(); err != nil {
		return fmt.Errorf("add user: %w", err)
	}

	hash, err := s.hashPassword(u.Password)
	if err != nil {
		return fmt.Errorf("add user: %w", err)
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	u.CreatedAt = s.stamp()
	_, err = db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.Username, hash, string(u.Role), toMillis(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("add user: %w", translate(err, userValue(u)))
	}

	slog.Debug("user added", "id", u.ID, "username", u.Username, "role", u.Role)
	return nil
}

// UpdateUser replaces a user's username, password and role. A password that
// is already a bcrypt hash (as returned by GetUser) is stored as is.
// Returns ErrNotFound if the id is absent.
func (s *Store) UpdateUser(ctx context.Context, u record.User) error {
	u.Normalize()
	if err := u.Validate(); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	hash, err := s.hashPassword(u.Password)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `
		UPDATE users SET username = ?, password = ?, role = ? WHERE id = ?
	`, u.Username, hash, string(u.Role), u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", translate(err, userValue(u)))
	}
	if err := requireRow(result, "user", u.ID); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// GetUser looks a user up through the unique username index.
// found is false if no such user exists.
func (s *Store) GetUser(ctx context.Context, username string) (u record.User, found bool, err error) {
	db, err := s.conn(ctx)
	if err != nil {
		return record.User{}, false, err
	}
	u, err = scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return record.User{}, false, nil
	}
	if err != nil {
		return record.User{}, false, fmt.Errorf("get user: %w", err)
	}
	return u, true, nil
}

// GetUsers returns every user ordered by creation time.
func (s *Store) GetUsers(ctx context.Context) ([]record.User, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []record.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords both return ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, username, password string) (record.User, error) {
	u, found, err := s.GetUser(ctx, username)
	if err != nil {
		return record.User{}, err
	}
	if !found {
		return record.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		slog.Warn("login rejected", "username", username)
		return record.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Store) hashPassword(password string) (string, error) {
	if _, err := bcrypt.Cost([]byte(password)); err == nil {
		return password, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func scanUser(row scanner) (record.User, error) {
	var u record.User
	var role string
	var createdAt int64
	if err := row.Scan(&u.ID, &u.Username, &u.Password, &role, &createdAt); err != nil {
		return record.User{}, err
	}
	u.Role = record.Role(role)
	u.CreatedAt = fromMillis(createdAt)
	return u, nil
}

func userValue(u record.User) func(string) string {
	return func(field string) string {
		if field == "username" {
			return u.Username
		}
		return u.ID
	}
}
