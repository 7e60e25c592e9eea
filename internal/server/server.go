package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/mkarpenko/campushub/internal/auth"
	"github.com/mkarpenko/campushub/internal/backup"
	"github.com/mkarpenko/campushub/internal/config"
	"github.com/mkarpenko/campushub/internal/email"
	"github.com/mkarpenko/campushub/internal/handler"
	"github.com/mkarpenko/campushub/internal/middleware"
	"github.com/mkarpenko/campushub/internal/mongodb"
	"github.com/mkarpenko/campushub/internal/otp"
	"github.com/mkarpenko/campushub/internal/store"
	ws "github.com/mkarpenko/campushub/internal/websocket"
)

type Server struct {
	db  *sql.DB
	hub *ws.Hub

	authH  *handler.AuthHandler
	otpH   *handler.OTPHandler
	clubH  *handler.ClubHandler
	eventH *handler.EventHandler

	authManager   *auth.Manager
	clubStore     *store.ClubStore
	eventStore    *store.EventStore
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	mongoHealth   func(context.Context) error
	logger        *slog.Logger
}

func New(db *sql.DB, mongoDB *mongo.Database, cfg config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	backupStore := store.NewBackupStore(db)
	clubStore := store.NewClubStore(mongoDB)
	eventStore := store.NewEventStore(mongoDB)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authManager := auth.NewManager(userStore, sessionStore, tokens, logger.With("component", "auth"))

	codes := otp.NewStore()
	emailClient := email.NewClient(cfg.Email.PostmarkToken, cfg.Email.FromEmail)

	backupMgr := backup.NewManager(cfg.Backup, cfg.SQLite.Path, db, backupStore, logger.With("component", "backup"))

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(authManager, logger.With("component", "auth_handler")),
		otpH:          handler.NewOTPHandler(codes, userStore, emailClient, logger.With("component", "otp")),
		clubH:         handler.NewClubHandler(clubStore, eventStore, hub, logger.With("component", "club")),
		eventH:        handler.NewEventHandler(eventStore, clubStore, hub, logger.With("component", "event")),
		authManager:   authManager,
		clubStore:     clubStore,
		eventStore:    eventStore,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		mongoHealth:   mongodb.Healthcheck(mongoDB),
		logger:        logger,
	}
}

// EnsureIndexes creates the Mongo indexes the stores rely on.
func (s *Server) EnsureIndexes(ctx context.Context) error {
	if err := s.clubStore.EnsureIndexes(ctx); err != nil {
		return err
	}
	return s.eventStore.EnsureIndexes(ctx)
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager for lifecycle control.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/otp/request", s.rateLimitedHandler(s.otpH.Request))
	outerMux.HandleFunc("POST /api/otp/verify", s.otpH.Verify)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Logout stays public: terminate is idempotent and the cookie must be
	// cleared even when the token is absent, expired, or garbage.
	outerMux.HandleFunc("POST /api/logout", s.authH.Logout)

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.authManager)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok", "mongo": "ok"}
	code := http.StatusOK
	if err := s.mongoHealth(ctx); err != nil {
		status["status"] = "degraded"
		status["mongo"] = err.Error()
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/me", s.authH.Me)

	// Club API routes
	mux.HandleFunc("GET /api/clubs", s.clubH.List)
	mux.HandleFunc("POST /api/clubs", s.clubH.Create)
	mux.HandleFunc("GET /api/clubs/{id}", s.clubH.Get)
	mux.HandleFunc("PUT /api/clubs/{id}", s.clubH.Update)
	mux.HandleFunc("DELETE /api/clubs/{id}", s.clubH.Delete)

	// Event API routes
	mux.HandleFunc("GET /api/clubs/{id}/events", s.eventH.ListByClub)
	mux.HandleFunc("POST /api/clubs/{id}/events", s.eventH.Create)
	mux.HandleFunc("GET /api/events/{id}", s.eventH.Get)
	mux.HandleFunc("PUT /api/events/{id}", s.eventH.Update)
	mux.HandleFunc("DELETE /api/events/{id}", s.eventH.Delete)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.Handle(s.hub, s.logger.With("component", "ws_handler")))
}
