package model

import (
	"strings"
	"time"
)

type Todo struct {
	ID          string     `db:"id"`
	Title       string     `db:"title"`
	Description *string    `db:"description"`
	Priority    int        `db:"priority"`
	ImageKeys   *string    `db:"image_keys"` // Comma separated, in display order
	DoneAt      *time.Time `db:"done_at"`
	CreatedBy   string     `db:"created_by"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// Images returns the attached image keys in order.
func (t *Todo) Images() []string {
	if t.ImageKeys == nil || *t.ImageKeys == "" {
		return nil
	}
	return strings.Split(*t.ImageKeys, ",")
}

// SetImages stores keys in the column encoding. An empty list clears it.
func (t *Todo) SetImages(keys []string) {
	if len(keys) == 0 {
		t.ImageKeys = nil
		return
	}
	joined := strings.Join(keys, ",")
	t.ImageKeys = &joined
}

// TodoWithCreator is a todo joined with its creator's profile name.
type TodoWithCreator struct {
	Todo
	CreatorName string `db:"creator_name"`
}
