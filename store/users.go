package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bulletnotes/models"

	"golang.org/x/crypto/bcrypt"
)

// UserStore persists user identities and local credentials.
type UserStore struct {
	DB *sql.DB
}

// Create registers a user with a local password. The plaintext is bcrypt
// hashed before it touches the database and is never stored or logged.
func (s *UserStore) Create(ctx context.Context, username, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)",
		username, string(hash), toMillis(now))
	if err != nil {
		if isDuplicate(err) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	hashStr := string(hash)
	return models.User{ID: int(id), Username: username, PasswordHash: &hashStr, CreatedAt: now}, nil
}

// CreateExternal registers a user authenticated by an identity provider. The
// account has no local credential: password_hash stays NULL and password
// login is impossible for it.
func (s *UserStore) CreateExternal(ctx context.Context, username string) (models.User, error) {
	now := time.Now().UTC()
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO users (username, created_at) VALUES (?, ?)",
		username, toMillis(now))
	if err != nil {
		if isDuplicate(err) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return models.User{ID: int(id), Username: username, CreatedAt: now}, nil
}

// VerifyPassword authenticates a local login. A missing user, a wrong
// password and an account without a local credential all return ErrNotFound;
// callers must not reveal which check failed.
func (s *UserStore) VerifyPassword(ctx context.Context, username, password string) (models.User, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return models.User{}, err
	}
	if user.PasswordHash == nil {
		return models.User{}, ErrNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	row := s.DB.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?",
		username)
	return scanUser(row)
}

func (s *UserStore) GetByID(ctx context.Context, id int) (models.User, error) {
	row := s.DB.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE id = ?",
		id)
	return scanUser(row)
}

// Delete removes a user together with all owned notes and their bullet
// points. The cascade is explicit and runs child-first in one transaction.
func (s *UserStore) Delete(ctx context.Context, id int) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete user: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM bullet_points WHERE note_id IN (SELECT id FROM notes WHERE user_id = ?)",
		id); err != nil {
		return fmt.Errorf("delete user bullet points: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM notes WHERE user_id = ?", id); err != nil {
		return fmt.Errorf("delete user notes: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	var hash sql.NullString
	var createdAt int64
	if err := row.Scan(&user.ID, &user.Username, &hash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	if hash.Valid {
		user.PasswordHash = &hash.String
	}
	user.CreatedAt = fromMillis(createdAt)
	return user, nil
}
