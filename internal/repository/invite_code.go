package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/oursapp/ours/internal/db"
	"github.com/oursapp/ours/internal/model"
)

var (
	ErrInviteCodeNotFound = errors.New("invite code not found")
	ErrDuplicateInvite    = errors.New("invite code already exists")
)

type InviteCodeRepository interface {
	Create(ctx context.Context, invite *model.InviteCode) error
	ByCode(ctx context.Context, code string) (*model.InviteCode, error)
}

type inviteCodeRepository struct {
	db *sqlx.DB
}

func NewInviteCodeRepository(db *sqlx.DB) InviteCodeRepository {
	return &inviteCodeRepository{db: db}
}

func (r *inviteCodeRepository) Create(ctx context.Context, invite *model.InviteCode) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invite_codes (code, created_by, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		invite.Code, invite.CreatedBy, invite.ExpiresAt, invite.CreatedAt)
	if db.IsUniqueViolation(err, "") {
		return ErrDuplicateInvite
	}
	return err
}

func (r *inviteCodeRepository) ByCode(ctx context.Context, code string) (*model.InviteCode, error) {
	var invite model.InviteCode
	err := r.db.GetContext(ctx, &invite, `SELECT * FROM invite_codes WHERE code = $1`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInviteCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}
