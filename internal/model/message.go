package model

import "time"

type Message struct {
	ID        string    `db:"id"`
	AuthorID  string    `db:"author_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// MessageWithAuthor is a bulletin message joined with its author's profile.
type MessageWithAuthor struct {
	Message
	AuthorName     string  `db:"author_name"`
	AuthorImageKey *string `db:"author_image_key"`
}
