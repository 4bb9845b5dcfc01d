package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/blogdb/server/config"
	"github.com/blogdb/server/internal/db"
	"github.com/blogdb/server/internal/events"
	"github.com/blogdb/server/internal/handlers"
	"github.com/blogdb/server/internal/mq"
	"github.com/blogdb/server/internal/services"
	"github.com/blogdb/server/internal/session"
	"github.com/blogdb/server/internal/store"
	"github.com/blogdb/server/internal/views"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Server wraps the HTTP server and everything it holds open.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	redis      *redis.Client
	queue      *mq.MQ
	logger     *logrus.Logger
}

// Deps are the collaborators the router needs.
type Deps struct {
	AuthService *services.AuthService
	PostService *services.PostService
	Sessions    *session.Manager
	Renderer    handlers.Renderer
	Logger      *logrus.Logger
}

// New opens the database, session store and optional broker, then builds
// the router.
func New(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	srv := &Server{db: dbConn, logger: logger}

	sessionStore, err := srv.openSessionStore(ctx, cfg)
	if err != nil {
		srv.close()
		return nil, err
	}

	sessions, err := session.NewManager(sessionStore, logger, session.Options{
		CookieName: cfg.Session.CookieName,
		Secret:     cfg.Session.Secret,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	})
	if err != nil {
		srv.close()
		return nil, err
	}

	var publisher events.Publisher = events.Nop{}
	queue, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		srv.close()
		return nil, err
	}
	if queue != nil {
		srv.queue = queue
		publisher = events.NewBrokerPublisher(queue)
	}

	renderer, err := views.NewRenderer()
	if err != nil {
		srv.close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	postRepo := store.NewPostRepository(dbConn)

	srv.router = NewRouter(Deps{
		AuthService: services.NewAuthService(userRepo, cfg.Auth.BcryptCost),
		PostService: services.NewPostService(postRepo, publisher, logger, services.PostOptions{
			EnforceOwnership: cfg.Auth.EnforceOwnership,
		}),
		Sessions: sessions,
		Renderer: renderer,
		Logger:   logger,
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 3000
	}

	srv.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return srv, nil
}

// NewRouter builds the chi router with middleware and every route.
func NewRouter(deps Deps) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		handlers.RequestLogger(deps.Logger),
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Handle("/static/*", http.StripPrefix("/static/", views.StaticHandler()))

	router.Group(func(r chi.Router) {
		r.Use(deps.Sessions.Middleware)
		handlers.AuthRouter(r, handlers.NewAuthHandler(deps.AuthService, deps.Sessions, deps.Renderer, deps.Logger))
		handlers.PostRouter(r, handlers.NewPostHandler(deps.PostService, deps.Renderer, deps.Logger))
	})
	return router
}

func (s *Server) openSessionStore(ctx context.Context, cfg config.Config) (session.Store, error) {
	switch cfg.Session.Backend {
	case "", "memory":
		return session.NewMemoryStoreWithLimit(cfg.Session.MemoryLimit), nil
	case "redis":
		rdb := session.NewRedisClient(cfg.Redis)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		s.redis = rdb
		return session.NewRedisStore(rdb), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

// Router exposes the chi router.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes held connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.close()
	return err
}

func (s *Server) close() {
	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}
