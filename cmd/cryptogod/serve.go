package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mausarm/crypto-god/internal/game"
	"github.com/mausarm/crypto-god/internal/server"

	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "runs the game server with periodic market refreshes" }
func (*serveCmd) Usage() string {
	return `serve [-addr :8080]

Serves the REST and websocket API and keeps prices, quests and offers up to date.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "listen address, overrides server.addr")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	addr := a.cfg.Server.Addr
	if c.addr != "" {
		addr = c.addr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(a.engine, a.health, a.log.Named("http")).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sched := &game.Scheduler{
		Engine:          a.engine,
		RefreshInterval: a.cfg.Game.RefreshInterval,
		QuestTick:       a.cfg.Game.QuestTick,
		Logger:          a.log.Named("scheduler"),
	}
	go sched.Run(ctx)

	go func() {
		a.log.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	a.log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server forced to shutdown", zap.Error(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
