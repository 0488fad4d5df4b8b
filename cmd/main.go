package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpctx "github.com/readsync/kosync-server/internal/api/http/context"
	"github.com/readsync/kosync-server/internal/api/http/router"
	"github.com/readsync/kosync-server/internal/config"
	"github.com/readsync/kosync-server/internal/logger"
	"github.com/readsync/kosync-server/internal/model"
	"github.com/readsync/kosync-server/internal/repository/memory"
	"github.com/readsync/kosync-server/internal/repository/postgres"
	"github.com/readsync/kosync-server/internal/server"
	"github.com/readsync/kosync-server/internal/service"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	// Optional .env file for local runs; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	var userStore model.UserStore
	var progressStore model.ProgressStore

	if cfg.Database.DSN != "" {
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			logger.Fatal("failed to initialize storage", "error", err)
		}
		defer db.Close()

		userStore = postgres.NewUserRepository(db)
		progressStore = postgres.NewProgressRepository(db)
	} else {
		logger.Info("no database DSN configured, using in-memory stores")
		userStore = memory.NewUserRepository()
		progressStore = memory.NewProgressRepository()
	}

	authService := service.NewAuth(userStore, logger)
	syncService := service.NewSync(authService, userStore, progressStore, service.SyncConfig{
		OpenRegistrations: cfg.Sync.OpenRegistrations,
		RandomDeviceID:    cfg.Sync.RandomDeviceID,
	}, logger)

	ctxMgr := httpctx.NewManager()
	r := router.New(syncService, ctxMgr, logger)
	httpServer := server.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
