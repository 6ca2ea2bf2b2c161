package commands

import (
	"context"
	"fmt"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"

	"github.com/strictpm/core/internal/application/services"
	"github.com/strictpm/core/internal/infrastructure/server"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the StrictPM API server",
		Long:  "Start the HTTP API with the chat worker, task store and AI-backed review and news endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	model, err := a.model(ctx)
	if err != nil {
		return err
	}

	ingestion := services.NewIngestionService(a.logger, a.metrics)
	chat := services.NewChatService(model, a.tasks, ingestion, a.location, a.logger)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	chat.Start(workerCtx)

	srv := server.New(a.cfg, a.store, server.Services{
		Tasks:  a.taskService(),
		Chat:   chat,
		Review: services.NewReviewService(a.tasks, model, a.location, a.logger),
		News:   services.NewNewsService(a.store, model, a.location, a.logger),
	}, a.metrics, a.logger)

	a.logger.Infow("Starting StrictPM API server",
		"port", a.cfg.Server.Port,
		"environment", a.cfg.App.Environment,
		"storage", a.cfg.Storage.Driver,
		"model", a.cfg.AI.Model,
	)

	startErr := make(chan error, 1)
	go func() {
		startErr <- srv.Start(fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port))
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		a.cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				return srv.Shutdown(ctx)
			},
			"chat-worker": func(ctx context.Context) error {
				return chat.Stop(ctx)
			},
		},
	)

	// Start returns nil once a shutdown has begun; anything else is fatal
	if err := <-startErr; err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	exitCode := <-wait
	a.logger.Infow("Server stopped", "exit_code", exitCode)
	if exitCode != 0 {
		return fmt.Errorf("shutdown finished with exit code %d", exitCode)
	}
	return nil
}
