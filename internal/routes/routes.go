package routes

import (
	"net/http"

	"github.com/oursapp/ours/internal/app"
	"github.com/oursapp/ours/internal/handler"
	"github.com/oursapp/ours/internal/middleware"
	"github.com/oursapp/ours/internal/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.SignInThrottle)
	invite := handler.NewInviteHandler(app.InviteService)
	photo := handler.NewPhotoHandler(app.PhotoService)
	message := handler.NewMessageHandler(app.MessageService)
	todo := handler.NewTodoHandler(app.TodoService)
	profile := handler.NewProfileHandler(app.ProfileService)

	mux := http.NewServeMux()

	// ============================================================================
	// OPERATIONS
	// ============================================================================

	mux.Handle("GET "+app.Cfg.MetricsPath, promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		err := app.DB.PingContext(r.Context())
		if err != nil {
			render.Error(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// ============================================================================
	// AUTH (throttled per IP)
	// ============================================================================

	mux.HandleFunc("POST /api/auth/signin", middleware.Throttle(app.SignInThrottle, "signin")(auth.SignIn))
	mux.HandleFunc("POST /api/auth/signup", middleware.Throttle(app.SignUpThrottle, "signup")(auth.SignUp))
	mux.HandleFunc("POST /api/auth/signout", auth.SignOut)

	mux.HandleFunc("POST /api/invite-code", middleware.RequireAuth(middleware.Throttle(app.InviteThrottle, "invite")(invite.Create)))

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	// Moments
	mux.HandleFunc("GET /api/moments/photos", middleware.RequireAuth(photo.List))
	mux.HandleFunc("POST /api/moments/photos", middleware.RequireAuth(photo.Create))
	mux.HandleFunc("DELETE /api/moments/photos/{photoId}", middleware.RequireAuth(photo.Delete))
	mux.HandleFunc("GET /api/moments/messages", middleware.RequireAuth(message.List))
	mux.HandleFunc("POST /api/moments/messages", middleware.RequireAuth(message.Create))

	// Todos
	mux.HandleFunc("GET /api/todos", middleware.RequireAuth(todo.List))
	mux.HandleFunc("POST /api/todos", middleware.RequireAuth(todo.Create))
	mux.HandleFunc("PUT /api/todos/{id}", middleware.RequireAuth(todo.Update))
	mux.HandleFunc("DELETE /api/todos/{id}", middleware.RequireAuth(todo.Delete))
	mux.HandleFunc("DELETE /api/todos", middleware.RequireAuth(todo.DeleteMany))

	// Profile
	mux.HandleFunc("GET /api/profile", middleware.RequireAuth(profile.Get))
	mux.HandleFunc("PUT /api/profile", middleware.RequireAuth(profile.Update))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, http.StatusNotFound, "Not found")
	})

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RealIP(app.TrustedProxies),
		middleware.RequestLogging,
		app.RateLimiter.Limit,
		middleware.SameOrigin, // Same-origin check for all state-changing requests
		middleware.AuthMiddleware(app.AuthService),
	)

	return handler
}
