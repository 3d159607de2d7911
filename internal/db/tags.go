package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tgienger/smartplanner/internal/models"
)

// CreateTag creates a new tag for a user
func (db *DB) CreateTag(ctx context.Context, userID int64, name string) (*models.Tag, error) {
	var id int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags WHERE user_id = ? AND name = ?", userID, name).Scan(&exists); err != nil {
			return err
		}
		if exists > 0 {
			return ErrTagExists
		}

		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags WHERE user_id = ?", userID).Scan(&count); err != nil {
			return err
		}
		if count >= models.MaxTagsPerUser {
			return ErrTagLimit
		}

		result, err := tx.ExecContext(ctx, "INSERT INTO tags (user_id, name) VALUES (?, ?)", userID, name)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrTagExists
			}
			return err
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}

	return db.GetTag(ctx, userID, id)
}

// GetTag retrieves a tag by ID
func (db *DB) GetTag(ctx context.Context, userID, id int64) (*models.Tag, error) {
	t := &models.Tag{}
	err := db.QueryRowContext(ctx, "SELECT id, name FROM tags WHERE id = ? AND user_id = ?", id, userID).
		Scan(&t.ID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTags returns a user's tags in creation order
func (db *DB) ListTags(ctx context.Context, userID int64) ([]models.Tag, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, name FROM tags WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// DeleteTag deletes a tag; tasks carrying it become untagged
func (db *DB) DeleteTag(ctx context.Context, userID, id int64) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "UPDATE tasks SET tag_id = NULL WHERE tag_id = ? AND user_id = ?", id, userID); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM tags WHERE id = ? AND user_id = ?", id, userID)
		if err != nil {
			return err
		}
		return expectRow(result)
	})
}

func ownsTag(ctx context.Context, q queryer, userID, tagID int64) error {
	var n int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags WHERE id = ? AND user_id = ?", tagID, userID).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidTag
	}
	return nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
