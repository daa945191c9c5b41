package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mazyad-entrepreneur/sync-vault/internal/application/session"
	"github.com/mazyad-entrepreneur/sync-vault/internal/infrastructure/api"
	"github.com/mazyad-entrepreneur/sync-vault/internal/infrastructure/store"
	"github.com/mazyad-entrepreneur/sync-vault/internal/interfaces/cli"
	"github.com/mazyad-entrepreneur/sync-vault/pkg/config"
	"github.com/mazyad-entrepreneur/sync-vault/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "syncvault: cargar configuración:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Debug().
		Str("env", cfg.App.Env).
		Str("api", cfg.API.BaseURL).
		Msg("iniciando aplicación")

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("abrir base local")
	}
	defer st.Close()

	client := api.New(cfg.API.BaseURL, cfg.API.Timeout, st, log)
	sess := session.New(client, st, log)
	app := cli.NewApp(cfg, log, st, client, sess)

	// Ctrl-C cancela el contexto raíz; los comandos de larga duración
	// (dashboard --watch, scan) terminan de forma ordenada.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		st.Close()
		os.Exit(1)
	}
}
