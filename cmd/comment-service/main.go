package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/glhive/hive/internal/api"
	"github.com/glhive/hive/internal/comment"
	"github.com/glhive/hive/internal/config"
	"github.com/glhive/hive/internal/database"
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
	projectClient := rpc.NewProjectClient(cfg.ProjectServiceURL, cfg.RPCTimeout)
	taskClient := rpc.NewTaskClient(cfg.TaskServiceURL, cfg.RPCTimeout)

	commentService := comment.NewService(
		comment.NewRepository(db.Pool()),
		taskClient,
		projectClient,
		identityClient,
	)

	router := api.NewCommentRouter(api.CommentRouterDeps{
		DB:             db,
		Version:        cfg.Version,
		CommentService: commentService,
		Codec:          codec,
		Resolver:       identityClient,
		TokenPrefix:    cfg.TokenPrefix,
	})

	if err := server.Run("comment-service", cfg.Port, cfg.Version, router); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
