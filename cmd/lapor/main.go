package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ignatzorin/lapor-client/internal/cli"
	"github.com/ignatzorin/lapor-client/internal/config"
	"github.com/ignatzorin/lapor-client/internal/gateway"
	"github.com/ignatzorin/lapor-client/internal/logger"
	"github.com/ignatzorin/lapor-client/internal/session"
	"github.com/ignatzorin/lapor-client/internal/storage"
)

func main() {
	// Ctrl+C отменяет текущий запрос.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lapor: ошибка загрузки конфигурации: %v\n", err)
		return 2
	}

	logger.Init(cfg.LogLevel)
	if cfg.Env == "development" {
		logger.SetTextFormatter()
	}

	store, err := storage.Open(ctx, cfg.StorageDriver, cfg.StoragePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lapor: ошибка открытия хранилища: %v\n", err)
		return 2
	}
	defer safeClose(store)

	contract, err := gateway.ContractByVersion(cfg.APIContract)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lapor: %v\n", err)
		return 2
	}

	endpoint := config.ResolveEndpoint(cfg, store)
	sessionStore := session.NewStore(store)
	client := gateway.NewClient(gateway.Options{
		BaseURL:        endpoint.BaseURL,
		FixtureMode:    endpoint.FixtureMode,
		Contract:       contract,
		Timeout:        cfg.HTTPTimeout,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}, sessionStore)

	app := cli.New(cli.Deps{
		Config:   cfg,
		Endpoint: endpoint,
		Storage:  store,
		Gateway:  client,
		Session:  session.NewManager(sessionStore, client),
		Out:      os.Stdout,
		Err:      os.Stderr,
		In:       os.Stdin,
	})
	return app.Execute(ctx, args)
}

// safeClose закрывает хранилище.
func safeClose(s storage.Storage) {
	if err := s.Close(); err != nil {
		logger.WithComponent("main").WithError(err).Warn("ошибка закрытия хранилища")
	}
}
