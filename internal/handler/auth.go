package handler

import (
	"net/http"

	"github.com/oursapp/ours/internal/middleware"
	"github.com/oursapp/ours/internal/ratelimit"
	"github.com/oursapp/ours/internal/render"
	"github.com/oursapp/ours/internal/service"
)

type AuthHandler struct {
	authService    *service.AuthService
	signInThrottle *ratelimit.Throttler[string]
}

func NewAuthHandler(authService *service.AuthService, signInThrottle *ratelimit.Throttler[string]) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		signInThrottle: signInThrottle,
	}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	InviteCode string `json:"inviteCode"`
}

type sessionResponse struct {
	UserID    string `json:"userId"`
	ExpiresAt string `json:"expiresAt"`
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := render.Decode(w, r, &req); err != nil {
		badRequest(w)
		return
	}

	token, session, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.signInThrottle.Reset(middleware.ClientIP(r))
	h.authService.SetSessionCookie(w, token, session.ExpiresAt)
	render.JSON(w, http.StatusOK, sessionResponse{
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt.Format(timeFormat),
	})
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := render.Decode(w, r, &req); err != nil {
		badRequest(w)
		return
	}

	token, session, err := h.authService.SignUp(r.Context(), service.SignUpInput{
		Email:      req.Email,
		Username:   req.Username,
		Password:   req.Password,
		InviteCode: req.InviteCode,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.authService.SetSessionCookie(w, token, session.ExpiresAt)
	render.JSON(w, http.StatusCreated, sessionResponse{
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt.Format(timeFormat),
	})
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(service.SessionCookie)
	if err == nil && cookie.Value != "" {
		err = h.authService.SignOut(r.Context(), cookie.Value)
		if err != nil {
			respondError(w, r, err)
			return
		}
	}

	h.authService.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
