package handler

import (
	"net/http"

	"github.com/oursapp/ours/internal/ctxkeys"
	"github.com/oursapp/ours/internal/render"
	"github.com/oursapp/ours/internal/service"
)

type TodoHandler struct {
	todoService *service.TodoService
}

func NewTodoHandler(todoService *service.TodoService) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
	}
}

type todoRequest struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	DoneAt      *string  `json:"doneAt"`
	ImageNames  []string `json:"imageNames"`
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	todos, err := h.todoService.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]any{"todos": todos})
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req todoRequest
	if err := render.Decode(w, r, &req); err != nil {
		badRequest(w)
		return
	}

	todo, uploads, err := h.todoService.Create(r.Context(), user.ID, service.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		ImageNames:  req.ImageNames,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, map[string]any{
		"newTodo":    todo,
		"signedUrls": nonNil(uploads),
	})
}

func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req todoRequest
	if err := render.Decode(w, r, &req); err != nil {
		badRequest(w)
		return
	}

	todo, uploads, err := h.todoService.Update(r.Context(), r.PathValue("id"), service.UpdateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		DoneAt:      req.DoneAt,
		ImageNames:  req.ImageNames,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]any{
		"todo":           todo,
		"imagesToUpload": nonNil(uploads),
	})
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.todoService.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TodoHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := render.Decode(w, r, &req); err != nil {
		badRequest(w)
		return
	}

	n, err := h.todoService.DeleteMany(r.Context(), req.IDs)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// nonNil keeps empty lists as [] rather than null in responses.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
