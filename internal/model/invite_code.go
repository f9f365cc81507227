package model

import "time"

type InviteCode struct {
	Code      string     `db:"code"`
	CreatedBy *string    `db:"created_by"` // Nil when minted from the CLI
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	UsedBy    *string    `db:"used_by"`
	CreatedAt time.Time  `db:"created_at"`
}

func (c *InviteCode) IsRedeemable(now time.Time) bool {
	return c.UsedAt == nil && now.Before(c.ExpiresAt)
}
