package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/oursapp/ours/internal/db"
	"github.com/oursapp/ours/internal/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrInviteCodeInvalid = errors.New("invite code is invalid or expired")
)

type UserRepository interface {
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	// CreateWithInvite inserts the user and profile and redeems the invite
	// code in one transaction. Nothing is written if the code cannot be used.
	CreateWithInvite(ctx context.Context, user *model.User, profile *model.Profile, inviteCode string) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.db.GetContext(ctx, user, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := r.db.GetContext(ctx, user, `SELECT * FROM users WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) CreateWithInvite(ctx context.Context, user *model.User, profile *model.Profile, inviteCode string) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// Write first so SQLite takes the write lock before any read.
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, email, username, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
			user.ID, user.Email, user.Username, user.PasswordHash, user.CreatedAt)
		if err != nil {
			switch {
			case db.IsUniqueViolation(err, "email"):
				return ErrDuplicateEmail
			case db.IsUniqueViolation(err, "username"):
				return ErrDuplicateUsername
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO profiles (id, user_id, name, image_key, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			profile.ID, profile.UserID, profile.Name, profile.ImageKey, profile.CreatedAt, profile.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert profile: %w", err)
		}

		var invite model.InviteCode
		err = tx.GetContext(ctx, &invite, `SELECT * FROM invite_codes WHERE code = $1`, inviteCode)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInviteCodeInvalid
		}
		if err != nil {
			return fmt.Errorf("failed to load invite code: %w", err)
		}
		if !invite.IsRedeemable(user.CreatedAt) {
			return ErrInviteCodeInvalid
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE invite_codes SET used_at = $1, used_by = $2 WHERE code = $3 AND used_at IS NULL`,
			user.CreatedAt, user.ID, inviteCode)
		if err != nil {
			return fmt.Errorf("failed to redeem invite code: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInviteCodeInvalid
		}
		return nil
	})
}
