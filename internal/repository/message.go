package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/oursapp/ours/internal/model"
)

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	// List returns all bulletin messages oldest first with their author.
	List(ctx context.Context) ([]*model.MessageWithAuthor, error)
}

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, author_id, content, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		message.ID, message.AuthorID, message.Content, message.CreatedAt, message.UpdatedAt)
	return err
}

func (r *messageRepository) List(ctx context.Context) ([]*model.MessageWithAuthor, error) {
	messages := []*model.MessageWithAuthor{}
	err := r.db.SelectContext(ctx, &messages, `
		SELECT m.*, p.name AS author_name, p.image_key AS author_image_key
		FROM messages m
		JOIN profiles p ON p.user_id = m.author_id
		ORDER BY m.created_at ASC, m.id ASC
	`)
	if err != nil {
		return nil, err
	}
	return messages, nil
}
