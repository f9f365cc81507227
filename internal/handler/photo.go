package handler

import (
	"net/http"

	"github.com/oursapp/ours/internal/render"
	"github.com/oursapp/ours/internal/service"
)

type PhotoHandler struct {
	photoService *service.PhotoService
}

func NewPhotoHandler(photoService *service.PhotoService) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	photos, err := h.photoService.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]any{"photos": photos})
}

func (h *PhotoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ImageNames []string `json:"imageNames"`
	}
	if err := render.Decode(w, r, &req); err != nil {
		badRequest(w)
		return
	}

	photos, uploadURLs, err := h.photoService.Create(r.Context(), req.ImageNames)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, map[string]any{
		"photos":     photos,
		"uploadUrls": uploadURLs,
	})
}

func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.photoService.Delete(r.Context(), r.PathValue("photoId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
