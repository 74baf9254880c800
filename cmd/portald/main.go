package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	apihttp "github.com/examforge/mcq-portal/internal/api/http"
	"github.com/examforge/mcq-portal/internal/auth"
	"github.com/examforge/mcq-portal/internal/config"
	"github.com/examforge/mcq-portal/internal/db"
	"github.com/examforge/mcq-portal/internal/events"
	"github.com/examforge/mcq-portal/internal/extract"
	"github.com/examforge/mcq-portal/internal/jobs"
	"github.com/examforge/mcq-portal/internal/quiz"
	"github.com/examforge/mcq-portal/internal/storage"
	"github.com/examforge/mcq-portal/internal/user"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer dbh.Close()

	blobs, err := storage.NewFSStore(cfg.UploadBasePath)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	gemini := extract.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel,
		cfg.UpstreamTimeout, cfg.UpstreamRetries)

	router := apihttp.NewRouter(apihttp.Deps{
		DB:             dbh,
		Users:          user.NewStore(dbh),
		Tokens:         auth.NewTokenService(cfg.JWTSecret, cfg.SessionTTL),
		Blobs:          blobs,
		Events:         events.NewRepo(dbh),
		Quiz:           quiz.NewSQLStore(dbh),
		Extract:        extract.NewPipeline(gemini, cfg.MaxPromptChars),
		MaxUploadBytes: cfg.MaxUploadBytes,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		FrontendDir:    cfg.FrontendDir,
	})

	sweeper := &jobs.RetentionSweeper{
		DB:       dbh,
		Blobs:    blobs,
		Window:   cfg.RetentionWindow,
		Interval: cfg.RetentionSweepEvery,
	}
	go sweeper.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("mcq-portal listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
