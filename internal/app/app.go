package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/netip"

	"github.com/jmoiron/sqlx"
	"github.com/oursapp/ours/internal/cache"
	"github.com/oursapp/ours/internal/config"
	"github.com/oursapp/ours/internal/db"
	"github.com/oursapp/ours/internal/middleware"
	"github.com/oursapp/ours/internal/ratelimit"
	"github.com/oursapp/ours/internal/repository"
	"github.com/oursapp/ours/internal/service"
	"github.com/oursapp/ours/internal/storage"
)

type App struct {
	Cfg *config.Config
	DB  *sqlx.DB

	AuthService    *service.AuthService
	InviteService  *service.InviteService
	PhotoService   *service.PhotoService
	MessageService *service.MessageService
	TodoService    *service.TodoService
	ProfileService *service.ProfileService

	// One escalating cooldown per sensitive route, keyed by client IP.
	SignInThrottle *ratelimit.Throttler[string]
	SignUpThrottle *ratelimit.Throttler[string]
	InviteThrottle *ratelimit.Throttler[string]
	RateLimiter    *middleware.RateLimiter
	TrustedProxies []netip.Prefix

	urls cache.URLStore
}

func New(cfg *config.Config) (*App, error) {
	err := validate(cfg)
	if err != nil {
		return nil, err
	}

	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Storage
	objectStore, err := storage.New(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Presigned URL cache: shared through redis when configured
	var urls cache.URLStore
	if cfg.CacheURL != "" {
		urls, err = cache.NewRedisStore(cfg.CacheURL)
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to initialize url cache: %w", err)
		}
	} else {
		lru, err := cache.NewTimedLRU[string, string](cfg.URLCacheTTL, cfg.URLCacheSize)
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to initialize url cache: %w", err)
		}
		urls = cache.NewLRUStore(lru)
	}

	return Build(cfg, database, objectStore, urls), nil
}

// Build wires repositories and services over already opened dependencies.
// It panics on invalid limits or URL lifetimes, which are startup errors.
func Build(cfg *config.Config, database *sqlx.DB, objectStore storage.ObjectStore, urls cache.URLStore) *App {
	// Repositories
	userRepository := repository.NewUserRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	sessionRepository := repository.NewSessionRepository(database)
	inviteCodeRepository := repository.NewInviteCodeRepository(database)
	photoRepository := repository.NewPhotoRepository(database)
	messageRepository := repository.NewMessageRepository(database)
	todoRepository := repository.NewTodoRepository(database)

	// Storage lifecycle
	provider := storage.NewSignedURLProvider(objectStore, urls, cfg.URLCacheTTL)
	images := service.NewImageLifecycle(provider)

	// Services
	authService := service.NewAuthService(userRepository, sessionRepository, cfg.SessionExpiry, cfg.SecureCookies())
	inviteService := service.NewInviteService(inviteCodeRepository, cfg.InviteExpiry)
	photoService := service.NewPhotoService(photoRepository, images, cfg.GalleryMaxPhotos)
	messageService := service.NewMessageService(messageRepository, images)
	todoService := service.NewTodoService(todoRepository, images)
	profileService := service.NewProfileService(userRepository, profileRepository, images)

	return &App{
		Cfg:            cfg,
		DB:             database,
		AuthService:    authService,
		InviteService:  inviteService,
		PhotoService:   photoService,
		MessageService: messageService,
		TodoService:    todoService,
		ProfileService: profileService,
		SignInThrottle: ratelimit.MustNew[string](cfg.AuthThrottleIntervals...),
		SignUpThrottle: ratelimit.MustNew[string](cfg.AuthThrottleIntervals...),
		InviteThrottle: ratelimit.MustNew[string](cfg.AuthThrottleIntervals...),
		RateLimiter:    middleware.NewRateLimiter(cfg.APIRatePerSec, cfg.APIRateBurst),
		TrustedProxies: mustTrustedProxies(cfg.TrustedProxies),
		urls:           urls,
	}
}

// validate rejects settings that Build would panic on.
func validate(cfg *config.Config) error {
	if cfg.URLCacheTTL < storage.MinURLTTL {
		return fmt.Errorf("URL_CACHE_TTL must be at least %s, got %s", storage.MinURLTTL, cfg.URLCacheTTL)
	}
	_, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	return nil
}

func mustTrustedProxies(entries []string) []netip.Prefix {
	prefixes, err := middleware.ParseTrustedProxies(entries)
	if err != nil {
		panic(err)
	}
	return prefixes
}

func (a *App) Close() error {
	var errs []error

	if a.RateLimiter != nil {
		a.RateLimiter.Close()
	}
	if closer, ok := a.urls.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}

	err := errors.Join(errs...)
	if err == nil {
		slog.Info("app closed")
	}
	return err
}
