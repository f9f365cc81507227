package handler

import (
	"net/http"

	"github.com/oursapp/ours/internal/ctxkeys"
	"github.com/oursapp/ours/internal/render"
	"github.com/oursapp/ours/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	profile, err := h.profileService.Get(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req struct {
		Name  string  `json:"name"`
		Email string  `json:"email"`
		Image *string `json:"image"`
	}
	if err := render.Decode(w, r, &req); err != nil {
		badRequest(w)
		return
	}

	profile, uploadURL, err := h.profileService.Update(r.Context(), user.ID, service.UpdateProfileInput{
		Name:  req.Name,
		Email: req.Email,
		Image: req.Image,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := map[string]any{"profile": profile}
	if uploadURL != nil {
		resp["signedUrl"] = *uploadURL
	}
	render.JSON(w, http.StatusOK, resp)
}
