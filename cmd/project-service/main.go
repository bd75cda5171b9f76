package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/glhive/hive/internal/api"
	"github.com/glhive/hive/internal/config"
	"github.com/glhive/hive/internal/database"
	"github.com/glhive/hive/internal/project"
	"github.com/glhive/hive/internal/rpc"
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
	identityClient := rpc.NewIdentityClient(cfg.IdentityServiceURL, cfg.RPCTimeout)

	projectService := project.NewService(
		project.NewRepository(db.Pool()),
		project.NewMembershipRepository(db.Pool()),
		project.NewUserProjectRoleRepository(db.Pool()),
		project.NewJoinRequestRepository(db.Pool()),
		identityClient,
		cfg.AdminLeadsAnyProject,
	)

	router := api.NewProjectRouter(api.ProjectRouterDeps{
		DB:             db,
		Version:        cfg.Version,
		ProjectService: projectService,
		Codec:          codec,
		Resolver:       identityClient,
		TokenPrefix:    cfg.TokenPrefix,
	})

	if err := server.Run("project-service", cfg.Port, cfg.Version, router); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
