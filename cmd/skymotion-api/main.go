package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/SLASHOO/SkyMotion-Library/internal/catalog"
	"github.com/SLASHOO/SkyMotion-Library/internal/database"
	"github.com/SLASHOO/SkyMotion-Library/internal/geoip"
	"github.com/SLASHOO/SkyMotion-Library/internal/server"
	"github.com/SLASHOO/SkyMotion-Library/internal/storage"
)

func main() {
	port := getEnv("PORT", "8080")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, databaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(databaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	log.Println("database migrations applied")

	allowedOrigins := splitList(os.Getenv("ALLOWED_ORIGINS"))

	var objects catalog.ObjectReader
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		store, err := storage.New(ctx, storage.Config{
			Endpoint:       getEnv("S3_ENDPOINT", "http://localhost:3900"),
			Bucket:         bucket,
			AccessKey:      os.Getenv("S3_ACCESS_KEY"),
			SecretKey:      os.Getenv("S3_SECRET_KEY"),
			Region:         getEnv("S3_REGION", "eu-central-1"),
			MaxObjectBytes: getEnvInt64("CATALOG_MAX_BYTES", 32*1024*1024),
		})
		if err != nil {
			log.Fatalf("storage initialization failed: %v", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			log.Fatalf("storage bucket check failed: %v", err)
		}
		if len(allowedOrigins) > 0 {
			if err := store.SetCORS(ctx, allowedOrigins); err != nil {
				log.Printf("storage CORS update failed: %v", err)
			}
		}
		objects = store
		log.Printf("catalog served from bucket %s", bucket)
	} else {
		log.Println("S3_BUCKET not set, catalog endpoint disabled")
	}

	geo, err := geoip.New(os.Getenv("GEOIP_DB_PATH"))
	if err != nil {
		log.Printf("geoip disabled: %v", err)
	}
	defer geo.Close()

	srv := server.New(server.Config{
		DB:                db.Pool,
		Pinger:            db,
		Catalog:           objects,
		CatalogKey:        getEnv("CATALOG_KEY", catalog.DefaultIndexKey),
		AllowedOrigins:    allowedOrigins,
		MemberTokenSecret: os.Getenv("MEMBER_TOKEN_SECRET"),
		GeoIP:             geo,
		EnableDocs:        getEnv("API_DOCS_ENABLED", "false") == "true",
		TrustProxy:        getEnv("TRUST_PROXY", "false") == "true",
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("skymotion-api listening on :%s", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-shutdownCh
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}
	log.Println("shutdown complete")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
