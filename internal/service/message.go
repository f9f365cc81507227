package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oursapp/ours/internal/model"
	"github.com/oursapp/ours/internal/repository"
	"github.com/oursapp/ours/internal/storage"
	"github.com/oursapp/ours/internal/validation"
)

type MessageView struct {
	MessageID   string    `json:"messageId"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdateAt    time.Time `json:"updateAt"`
	Author      string    `json:"author"`
	AuthorImage *string   `json:"authorImage"`
}

type MessageService struct {
	messageRepo repository.MessageRepository
	images      *ImageLifecycle
	now         func() time.Time
}

func NewMessageService(messageRepo repository.MessageRepository, images *ImageLifecycle) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		images:      images,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// List returns the bulletin board oldest first. Author avatars are served
// through the read URL cache, so a board full of one author signs once.
func (s *MessageService) List(ctx context.Context) ([]MessageView, error) {
	messages, err := s.messageRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	views := make([]MessageView, len(messages))
	for i, m := range messages {
		views[i] = MessageView{
			MessageID: m.ID,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			UpdateAt:  m.UpdatedAt,
			Author:    m.AuthorName,
		}
		if m.AuthorImageKey != nil {
			url, err := s.images.ReadURL(ctx, storage.Avatar, *m.AuthorImageKey)
			if err != nil {
				return nil, err
			}
			views[i].AuthorImage = &url
		}
	}
	return views, nil
}

func (s *MessageService) Create(ctx context.Context, authorID, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	err := validation.ValidateMessage(content)
	if err != nil {
		return nil, invalid("content", err.Error())
	}

	now := s.now()
	message := &model.Message{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.messageRepo.Create(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return message, nil
}
