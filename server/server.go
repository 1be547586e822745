package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmcconeghy/CL-backend-assessment/cache"
	"github.com/dmcconeghy/CL-backend-assessment/config"
	"github.com/dmcconeghy/CL-backend-assessment/core/session"
	"github.com/dmcconeghy/CL-backend-assessment/db"
	"github.com/dmcconeghy/CL-backend-assessment/logger"
	"github.com/dmcconeghy/CL-backend-assessment/repository"
	"github.com/dmcconeghy/CL-backend-assessment/storage"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogPath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	conn, err := db.ConnectDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer conn.Close()

	if err := db.InitDB(conn); err != nil {
		logger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}

	// Redis and MinIO are optional; the API degrades to uncached reads and
	// image-name-only users when they are unavailable.
	var sessionCache *cache.SessionCache
	if redisClient, err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, session cache disabled", logger.ErrorField(err))
	} else {
		defer redisClient.Close()
		sessionCache = cache.NewSessionCache(redisClient, time.Duration(cfg.CacheTTLSec)*time.Second)
		logger.Info("Successfully connected to Redis")
	}

	var images *storage.ImageStore
	if images, err = storage.NewImageStore(cfg); err != nil {
		logger.Warn("MinIO unavailable, image endpoints disabled", logger.ErrorField(err))
		images = nil
	}

	userRepo := repository.NewMySQLUserRepository(conn)
	sessionRepo := repository.NewMySQLSessionRepository(conn)
	sessionService := session.NewService(userRepo, sessionRepo, sessionCache)

	userHandler := NewUserHandler(userRepo, images)
	audioHandler := NewAudioHandler(sessionService)

	router := NewRouter(userHandler, audioHandler)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}

// NewRouter wires the API routes onto a gorilla/mux router.
func NewRouter(users *UserHandler, audio *AudioHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(loggingMiddleware)

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Mission Control to Major Tom"))
	}).Methods(http.MethodGet)

	// User endpoints
	router.HandleFunc("/api/users", users.CreateUserHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/users/search", users.SearchUserHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{user_id:[0-9]+}", users.GetUserHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{user_id:[0-9]+}", users.UpdateUserHandler).Methods(http.MethodPatch)
	router.HandleFunc("/api/users/{user_id:[0-9]+}", users.DeleteUserHandler).Methods(http.MethodDelete)
	router.HandleFunc("/api/users/{user_id:[0-9]+}/image", users.GetUserImageHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{user_id:[0-9]+}/image", users.UploadUserImageHandler).Methods(http.MethodPut)

	// Audio session endpoints
	router.HandleFunc("/api/audio", audio.CreateAudioHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/audio/session/{session_id:[0-9]+}", audio.GetAudioBySessionHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/audio/update/{session_id:[0-9]+}", audio.UpdateAudioHandler).Methods(http.MethodPatch)
	router.HandleFunc("/api/audio/{user_id:[0-9]+}", audio.ListAudioByUserHandler).Methods(http.MethodGet)

	return router
}
