// Package main initializes and starts the Chalkboard API server, setting up
// configuration, logging, the database connection, repositories, services
// and handlers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"time"

	nethttp "net/http"

	"github.com/avolkov/chalkboard/internal/config"
	"github.com/avolkov/chalkboard/internal/db"
	"github.com/avolkov/chalkboard/internal/logger"
	"github.com/avolkov/chalkboard/internal/repository"
	"github.com/avolkov/chalkboard/internal/server/handler/http"
	"github.com/avolkov/chalkboard/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.ParseServer(os.Args[1:])

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	zapLogger, err := logger.New("info")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	if options.TokenSecret == "" {
		zapLogger.Fatal("token secret is required (-t or TOKEN_SECRET)")
	}
	tokenSecret := []byte(options.TokenSecret)

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Revoke stale share codes in the background.
	db.StartShareSweeper(context.Background(), postgresDB,
		time.Hour,       // interval
		30*24*time.Hour, // retention: 30 days
		zapLogger,
	)

	// Initialize repositories for users and notes.
	usersRepo := repository.NewPostgresUsersRepository(postgresDB)
	notesRepo := repository.NewPostgresNotesRepository(postgresDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(usersRepo, tokenSecret)
	notesService := service.NewNotesService(notesRepo)

	// Create HTTP handlers for credential and note endpoints.
	authHandler := &http.AuthHandler{AuthService: authService}
	notesHandler := &http.NotesHandler{NotesService: notesService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, notesHandler, tokenSecret, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
