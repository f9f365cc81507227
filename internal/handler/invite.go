package handler

import (
	"net/http"
	"time"

	"github.com/oursapp/ours/internal/ctxkeys"
	"github.com/oursapp/ours/internal/render"
	"github.com/oursapp/ours/internal/service"
)

const timeFormat = time.RFC3339

type InviteHandler struct {
	inviteService *service.InviteService
}

func NewInviteHandler(inviteService *service.InviteService) *InviteHandler {
	return &InviteHandler{
		inviteService: inviteService,
	}
}

func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	invite, err := h.inviteService.Create(r.Context(), &user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, map[string]string{
		"code":      invite.Code,
		"expiresAt": invite.ExpiresAt.Format(timeFormat),
	})
}
