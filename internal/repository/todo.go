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

var ErrTodoNotFound = errors.New("todo not found")

type TodoRepository interface {
	// List returns all todos by ascending priority with their creator.
	List(ctx context.Context) ([]*model.TodoWithCreator, error)
	ByID(ctx context.Context, id string) (*model.Todo, error)
	// Create inserts todo at the bottom of the list. Priority is assigned by
	// the insert itself and written back to todo.
	Create(ctx context.Context, todo *model.Todo) error
	// Update loads the todo, lets mutate change it and writes it back, all in
	// one transaction. An error from mutate aborts without writing.
	Update(ctx context.Context, id string, mutate func(todo *model.Todo) error) (*model.Todo, error)
	Delete(ctx context.Context, id string) (*model.Todo, error)
	// DeleteMany removes every listed todo that exists and returns the
	// removed rows. Unknown ids are ignored.
	DeleteMany(ctx context.Context, ids []string) ([]*model.Todo, error)
}

type todoRepository struct {
	db *sqlx.DB
}

func NewTodoRepository(db *sqlx.DB) TodoRepository {
	return &todoRepository{db: db}
}

func (r *todoRepository) List(ctx context.Context) ([]*model.TodoWithCreator, error) {
	todos := []*model.TodoWithCreator{}
	err := r.db.SelectContext(ctx, &todos, `
		SELECT t.*, p.name AS creator_name
		FROM todos t
		JOIN profiles p ON p.user_id = t.created_by
		ORDER BY t.priority ASC, t.created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	return todos, nil
}

func (r *todoRepository) ByID(ctx context.Context, id string) (*model.Todo, error) {
	var todo model.Todo
	err := r.db.GetContext(ctx, &todo, `SELECT * FROM todos WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTodoNotFound
	}
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepository) Create(ctx context.Context, todo *model.Todo) error {
	// A single statement keeps the max(priority) read and the insert atomic.
	err := r.db.GetContext(ctx, &todo.Priority, `
		INSERT INTO todos (id, title, description, priority, image_keys, done_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(priority), 0) + 1 FROM todos), $4, $5, $6, $7, $8)
		RETURNING priority
	`, todo.ID, todo.Title, todo.Description, todo.ImageKeys, todo.DoneAt, todo.CreatedBy, todo.CreatedAt, todo.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert todo: %w", err)
	}
	return nil
}

func (r *todoRepository) Update(ctx context.Context, id string, mutate func(todo *model.Todo) error) (*model.Todo, error) {
	var todo model.Todo

	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// No-op write to lock the row before reading it.
		result, err := tx.ExecContext(ctx, `UPDATE todos SET id = id WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to lock todo: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrTodoNotFound
		}

		err = tx.GetContext(ctx, &todo, `SELECT * FROM todos WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to load todo: %w", err)
		}

		err = mutate(&todo)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE todos
			SET title = $1, description = $2, image_keys = $3, done_at = $4, updated_at = $5
			WHERE id = $6
		`, todo.Title, todo.Description, todo.ImageKeys, todo.DoneAt, todo.UpdatedAt, id)
		if err != nil {
			return fmt.Errorf("failed to update todo: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepository) Delete(ctx context.Context, id string) (*model.Todo, error) {
	var todo model.Todo
	err := r.db.GetContext(ctx, &todo, `DELETE FROM todos WHERE id = $1 RETURNING *`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTodoNotFound
	}
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepository) DeleteMany(ctx context.Context, ids []string) ([]*model.Todo, error) {
	todos := []*model.Todo{}
	if len(ids) == 0 {
		return todos, nil
	}

	query, args, err := sqlx.In(`DELETE FROM todos WHERE id IN (?) RETURNING *`, ids)
	if err != nil {
		return nil, err
	}

	err = r.db.SelectContext(ctx, &todos, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to delete todos: %w", err)
	}
	return todos, nil
}
