package main

import (
	"context"   // Context for Redis and shutdown
	"errors"    // Error inspection
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Signal notification
	"syscall"   // SIGTERM
	"time"      // Shutdown deadline

	"artspace/internal/config"  // Custom package for configuration
	"artspace/internal/db"      // Custom package for database setup
	"artspace/internal/server"  // Router wiring
	"artspace/internal/storage" // Asset store

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode) // Set Mode to Release if in production
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET is required")
	}

	// Connect to the database, create the tables and the seed admin
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	if err := db.SeedAdmin(gdb, server.AdminSeed(cfg)); err != nil {
		logrus.Fatalf("failed to seed admin: %v", err)
	}

	assets, err := openAssetStore(cfg)
	if err != nil {
		logrus.Fatalf("failed to open asset store: %v", err)
	}

	// Setup Redis client when configured
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logrus.Info("REDIS_ADDR not set, listing cache disabled")
	}

	r := server.NewRouter(server.Deps{Config: cfg, DB: gdb, Assets: assets, Redis: redisClient})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	srv := &http.Server{Addr: ":" + cfg.AppPort, Handler: r}
	go func() {
		logrus.WithField("port", cfg.AppPort).Info("Server running") // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("shutdown: %v", err)
	}
	logrus.Info("Server exited")
}

// openAssetStore selects the upload backend from STORAGE_DRIVER
func openAssetStore(cfg *config.Config) (storage.AssetStore, error) {
	switch cfg.StorageDriver {
	case "minio":
		store, err := storage.NewMinioStore(storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		store, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}
