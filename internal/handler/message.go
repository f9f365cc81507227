package handler

import (
	"net/http"

	"github.com/oursapp/ours/internal/ctxkeys"
	"github.com/oursapp/ours/internal/render"
	"github.com/oursapp/ours/internal/service"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messageService.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req struct {
		Content string `json:"content"`
	}
	if err := render.Decode(w, r, &req); err != nil {
		badRequest(w)
		return
	}

	message, err := h.messageService.Create(r.Context(), user.ID, req.Content)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, map[string]any{
		"messageId": message.ID,
		"content":   message.Content,
		"createdAt": message.CreatedAt,
	})
}
