package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	wa "github.com/panyam/webauth"
	"github.com/panyam/webauth/internal/config"
	"github.com/panyam/webauth/internal/logger"
	"github.com/panyam/webauth/oauth2"
	"github.com/panyam/webauth/stores"
	gaestore "github.com/panyam/webauth/stores/gae"
	gormstore "github.com/panyam/webauth/stores/gorm"
	mongostore "github.com/panyam/webauth/stores/mongo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	users, sessionStore, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage", "backend", cfg.Backend, "error", err)
	}
	defer closeBackend()
	logger.Info("storage ready", "backend", cfg.Backend)

	sessions := wa.NewSessionManager(users, wa.SessionConfig{
		Store:      sessionStore,
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.Secure,
	}, logger.Logger)

	appConfig := wa.AppConfig{
		Users:              users,
		Sessions:           sessions,
		Logger:             logger.Logger,
		FrontendURL:        cfg.FrontendURL,
		FailureRedirectURL: cfg.OAuthFailureURL,
	}
	if cfg.GoogleEnabled() {
		appConfig.Provider = oauth2.NewGoogleOAuth2(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.CallbackURL, cfg.Session.Secret, logger.Logger)
	} else {
		logger.Warn("GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set, google login disabled")
	}

	app, err := wa.NewApp(appConfig)
	if err != nil {
		logger.Fatal("failed to create app", "error", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           withCORS(cfg.FrontendURL, app.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server on", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Addr)
	}
	logger.Info("shutdown complete")
}

// openBackend connects the configured user store and picks a session store.
// Only the mongo backend persists sessions, the others keep them in memory.
func openBackend(ctx context.Context, cfg *config.Config) (wa.UserStore, scs.Store, func(), error) {
	switch cfg.Backend {
	case config.BackendMongo:
		client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoDB.URI))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		if err := client.Ping(ctx, nil); err != nil {
			closeFn()
			return nil, nil, nil, fmt.Errorf("failed to ping mongodb: %w", err)
		}
		db := client.Database(cfg.MongoDB.Database)
		users := mongostore.NewUserStore(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		sessions := mongostore.NewSessionStore(db)
		if err := sessions.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		return users, sessions, closeFn, nil

	case config.BackendPostgres:
		db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{TranslateError: true})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := gormstore.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return gormstore.NewUserStore(db), memstore.New(), closeFn, nil

	case config.BackendDatastore:
		client, err := datastore.NewClient(ctx, cfg.Datastore.ProjectID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create datastore client: %w", err)
		}
		return gaestore.NewUserStore(client, cfg.Datastore.Namespace), memstore.New(), func() { client.Close() }, nil

	case config.BackendFS:
		if err := os.MkdirAll(cfg.FS.StoragePath, 0755); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create storage path: %w", err)
		}
		return stores.NewFSUserStore(cfg.FS.StoragePath), memstore.New(), func() {}, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
