package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oursapp/ours/internal/model"
	"github.com/oursapp/ours/internal/repository"
	"github.com/oursapp/ours/internal/storage"
	"github.com/oursapp/ours/internal/validation"
)

type TodoView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Priority    int        `json:"priority"`
	DoneAt      *time.Time `json:"doneAt"`
	ImageKeys   []string   `json:"imageKeys"`
	ImageURLs   []string   `json:"imageUrls,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	CreatorName string     `json:"creatorName,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ImageUpload tells the client where to PUT the file it named.
type ImageUpload struct {
	Name      string `json:"name"`
	Key       string `json:"key"`
	SignedURL string `json:"signedUrl"`
}

type CreateTodoInput struct {
	Title       string
	Description *string
	ImageNames  []string
}

// UpdateTodoInput replaces every editable field. DoneAt is an RFC 3339
// timestamp or nil for "not done". ImageNames mixes keys of images to keep
// with names of new files.
type UpdateTodoInput struct {
	Title       string
	Description *string
	DoneAt      *string
	ImageNames  []string
}

type TodoService struct {
	todoRepo repository.TodoRepository
	images   *ImageLifecycle
	now      func() time.Time
}

func NewTodoService(todoRepo repository.TodoRepository, images *ImageLifecycle) *TodoService {
	return &TodoService{
		todoRepo: todoRepo,
		images:   images,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *TodoService) List(ctx context.Context) ([]TodoView, error) {
	todos, err := s.todoRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	views := make([]TodoView, len(todos))
	for i, todo := range todos {
		view, err := s.signedView(ctx, &todo.Todo)
		if err != nil {
			return nil, err
		}
		view.CreatorName = todo.CreatorName
		views[i] = *view
	}
	return views, nil
}

// Create inserts the todo with freshly allocated image keys, then returns one
// upload URL per image name in request order.
func (s *TodoService) Create(ctx context.Context, userID string, in CreateTodoInput) (*TodoView, []ImageUpload, error) {
	title, description, err := validateTodoText(in.Title, in.Description)
	if err != nil {
		return nil, nil, err
	}
	if len(in.ImageNames) > storage.TodoAttachment.MaxImages {
		return nil, nil, invalid("imageNames", fmt.Sprintf("at most %d images per todo", storage.TodoAttachment.MaxImages))
	}

	allocations, err := s.images.Allocate("imageNames", in.ImageNames)
	if err != nil {
		return nil, nil, err
	}
	keys := make([]string, len(allocations))
	for i, a := range allocations {
		keys[i] = a.Key
	}

	now := s.now()
	todo := &model.Todo{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	todo.SetImages(keys)

	err = s.todoRepo.Create(ctx, todo)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create todo: %w", err)
	}

	uploads, err := s.uploads(ctx, allocations)
	if err != nil {
		return nil, nil, err
	}

	view, err := s.signedView(ctx, todo)
	if err != nil {
		return nil, nil, err
	}
	return view, uploads, nil
}

// Update replaces the todo's fields and image list. The stored keys are read
// and the new list written in one transaction. Upload URLs for new images are
// issued and dropped images released only after it commits.
//
// Concurrent edits are last write wins on the text fields.
func (s *TodoService) Update(ctx context.Context, id string, in UpdateTodoInput) (*TodoView, []ImageUpload, error) {
	title, description, err := validateTodoText(in.Title, in.Description)
	if err != nil {
		return nil, nil, err
	}
	if len(in.ImageNames) > storage.TodoAttachment.MaxImages {
		return nil, nil, invalid("imageNames", fmt.Sprintf("at most %d images per todo", storage.TodoAttachment.MaxImages))
	}

	var doneAt *time.Time
	if in.DoneAt != nil {
		t, err := time.Parse(time.RFC3339, *in.DoneAt)
		if err != nil {
			return nil, nil, invalid("doneAt", "must be an RFC 3339 timestamp or null")
		}
		t = t.UTC()
		doneAt = &t
	}

	var diff ImageDiff
	todo, err := s.todoRepo.Update(ctx, id, func(current *model.Todo) error {
		d, err := s.images.Diff("imageNames", current.Images(), in.ImageNames)
		if err != nil {
			return err
		}
		diff = d

		current.Title = title
		current.Description = description
		current.DoneAt = doneAt
		current.SetImages(d.Final)
		current.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, nil, notFound("todo")
		}
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to update todo: %w", err)
	}

	uploads, err := s.uploads(ctx, diff.Added)

	// Removed keys are unreferenced once the row commits, whether or not
	// signing the new ones succeeded.
	s.images.Release(ctx, storage.TodoAttachment, diff.Removed)
	if err != nil {
		return nil, nil, err
	}

	view, err := s.signedView(ctx, todo)
	if err != nil {
		return nil, nil, err
	}
	return view, uploads, nil
}

// Delete removes the todo, then releases its images.
func (s *TodoService) Delete(ctx context.Context, id string) error {
	todo, err := s.todoRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return notFound("todo")
		}
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	s.images.Release(ctx, storage.TodoAttachment, todo.Images())
	return nil
}

// DeleteMany removes every listed todo that exists and returns how many were
// removed. Images of all removed todos are released after the delete.
func (s *TodoService) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, invalid("ids", "at least one id is required")
	}

	todos, err := s.todoRepo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete todos: %w", err)
	}

	var keys []string
	for _, todo := range todos {
		keys = append(keys, todo.Images()...)
	}
	s.images.Release(ctx, storage.TodoAttachment, keys)
	return len(todos), nil
}

func (s *TodoService) uploads(ctx context.Context, allocations []ImageAllocation) ([]ImageUpload, error) {
	keys := make([]string, len(allocations))
	for i, a := range allocations {
		keys[i] = a.Key
	}

	urls, err := s.images.UploadURLs(ctx, storage.TodoAttachment, keys)
	if err != nil {
		return nil, err
	}

	uploads := make([]ImageUpload, len(allocations))
	for i, a := range allocations {
		uploads[i] = ImageUpload{Name: a.Name, Key: a.Key, SignedURL: urls[i]}
	}
	return uploads, nil
}

// signedView is the todo with cached read URLs for its images.
func (s *TodoService) signedView(ctx context.Context, todo *model.Todo) (*TodoView, error) {
	view := todoView(todo)
	urls, err := s.images.ReadURLs(ctx, storage.TodoAttachment, view.ImageKeys)
	if err != nil {
		return nil, err
	}
	view.ImageURLs = urls
	return &view, nil
}

func validateTodoText(title string, description *string) (string, *string, error) {
	v := &validator{}
	title = strings.TrimSpace(title)
	v.check("title", validation.ValidateTodoTitle(title))

	if description != nil {
		d := strings.TrimSpace(*description)
		v.check("description", validation.ValidateTodoDescription(d))
		description = &d
		if d == "" {
			description = nil
		}
	}

	if err := v.err(); err != nil {
		return "", nil, err
	}
	return title, description, nil
}

func todoView(todo *model.Todo) TodoView {
	keys := todo.Images()
	if keys == nil {
		keys = []string{}
	}
	return TodoView{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		Priority:    todo.Priority,
		DoneAt:      todo.DoneAt,
		ImageKeys:   keys,
		CreatedBy:   todo.CreatedBy,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}
}
