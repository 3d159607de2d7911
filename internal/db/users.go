package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/tgienger/smartplanner/internal/models"
)

// tokenBytes gives 40 hex characters.
const tokenBytes = 20

// CreateUser registers a new account
func (db *DB) CreateUser(ctx context.Context, username, email, name, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var id int64
	err = db.withTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE username = ?", username).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return ErrUsernameTaken
		}
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return ErrEmailTaken
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO users (username, email, name, password_hash) VALUES (?, ?, ?, ?)
		`, username, email, name, string(hash))
		if err != nil {
			if isUniqueViolation(err) {
				return ErrUsernameTaken
			}
			return err
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}

	return db.GetUser(ctx, id)
}

// GetUser retrieves a user by ID
func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u := &models.User{}
	err := db.QueryRowContext(ctx, "SELECT id, username, email, name FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.Username, &u.Email, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks a username and password.
func (db *DB) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u := &models.User{}
	var hash string
	err := db.QueryRowContext(ctx, `
		SELECT id, username, email, name, password_hash FROM users WHERE username = ?
	`, username).Scan(&u.ID, &u.Username, &u.Email, &u.Name, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueToken returns the user's token, creating one on first use.
func (db *DB) IssueToken(ctx context.Context, userID int64) (string, error) {
	var token string
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, "SELECT token FROM tokens WHERE user_id = ?", userID).Scan(&token)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		token, err = newToken()
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, "INSERT INTO tokens (token, user_id) VALUES (?, ?)", token, userID)
		return err
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// UserByToken resolves a token to its user.
func (db *DB) UserByToken(ctx context.Context, token string) (*models.User, error) {
	u := &models.User{}
	err := db.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.email, u.name
		FROM users u
		JOIN tokens tk ON tk.user_id = u.id
		WHERE tk.token = ?
	`, token).Scan(&u.ID, &u.Username, &u.Email, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser deletes a user (tasks, tags and tokens cascade)
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectRow(result)
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func expectRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
