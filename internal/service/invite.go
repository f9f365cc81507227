package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oursapp/ours/internal/model"
	"github.com/oursapp/ours/internal/repository"
)

type InviteService struct {
	inviteRepo repository.InviteCodeRepository
	expiry     time.Duration
	now        func() time.Time
}

func NewInviteService(inviteRepo repository.InviteCodeRepository, expiry time.Duration) *InviteService {
	return &InviteService{
		inviteRepo: inviteRepo,
		expiry:     expiry,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create mints a single-use code. createdBy is nil for codes minted from the
// command line.
func (s *InviteService) Create(ctx context.Context, createdBy *string) (*model.InviteCode, error) {
	// Retry once on a code collision.
	for range 2 {
		code, err := GenerateToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate invite code: %w", err)
		}

		now := s.now()
		invite := &model.InviteCode{
			Code:      code,
			CreatedBy: createdBy,
			ExpiresAt: now.Add(s.expiry),
			CreatedAt: now,
		}
		err = s.inviteRepo.Create(ctx, invite)
		if errors.Is(err, repository.ErrDuplicateInvite) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create invite code: %w", err)
		}

		slog.Info("invite code created", "expires_at", invite.ExpiresAt)
		return invite, nil
	}
	return nil, fmt.Errorf("failed to create invite code: %w", repository.ErrDuplicateInvite)
}
