package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/oursapp/ours/internal/db"
	"github.com/oursapp/ours/internal/model"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileUpdate replaces the editable profile fields. A nil ImageKey clears
// the avatar.
type ProfileUpdate struct {
	Name      string
	Email     string
	ImageKey  *string
	UpdatedAt time.Time
}

type ProfileRepository interface {
	ByUserID(ctx context.Context, userID string) (*model.Profile, error)
	// Update locks the profile, lets mutate derive the new fields from the
	// stored row, and writes the profile and the user's email in one
	// transaction. It returns the avatar key that was stored before the update.
	// An error from mutate aborts without writing.
	Update(ctx context.Context, userID string, mutate func(current *model.Profile) (ProfileUpdate, error)) (previousImageKey *string, err error)
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) ByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT * FROM profiles WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, userID string, mutate func(current *model.Profile) (ProfileUpdate, error)) (*string, error) {
	var previous *string

	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// Touch the row first: it locks it for the rest of the transaction.
		result, err := tx.ExecContext(ctx, `UPDATE profiles SET updated_at = updated_at WHERE user_id = $1`, userID)
		if err != nil {
			return fmt.Errorf("failed to lock profile: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrProfileNotFound
		}

		var current model.Profile
		err = tx.GetContext(ctx, &current, `SELECT * FROM profiles WHERE user_id = $1`, userID)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		previous = current.ImageKey

		u, err := mutate(&current)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `UPDATE profiles SET name = $1, image_key = $2, updated_at = $3 WHERE user_id = $4`, u.Name, u.ImageKey, u.UpdatedAt, userID)
		if err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}

		_, err = tx.ExecContext(ctx, `UPDATE users SET email = $1 WHERE id = $2`, u.Email, userID)
		if err != nil {
			if db.IsUniqueViolation(err, "email") {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("failed to update email: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}
