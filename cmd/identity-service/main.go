package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/glhive/hive/internal/api"
	"github.com/glhive/hive/internal/config"
	"github.com/glhive/hive/internal/database"
	"github.com/glhive/hive/internal/identity"
	"github.com/glhive/hive/internal/server"
	"github.com/glhive/hive/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	server.SetupLogger(cfg.LogLevel)

	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	codec := token.NewCodec(cfg.TokenKeyID, []byte(cfg.TokenSigningKey))

	identityService := identity.NewService(
		identity.NewUserRepository(db.Pool()),
		identity.NewRoleRepository(db.Pool()),
		identity.NewDepartmentRepository(db.Pool()),
		identity.NewVerificationTokenRepository(db.Pool()),
		token.NewLedger(db.Pool()),
		codec,
		cfg.TokenTTL,
		cfg.BcryptCost,
	)

	if err := identityService.Seed(ctx); err != nil {
		slog.Error("failed to seed reference data", "error", err)
		os.Exit(1)
	}

	router := api.NewIdentityRouter(api.IdentityRouterDeps{
		DB:              db,
		Version:         cfg.Version,
		IdentityService: identityService,
		Codec:           codec,
		TokenPrefix:     cfg.TokenPrefix,
	})

	if err := server.Run("identity-service", cfg.Port, cfg.Version, router); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
