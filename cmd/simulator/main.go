package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"greenhouse_console/internal/logger"
	"greenhouse_console/internal/sim/handlers"
	"greenhouse_console/internal/sim/hub"
	"greenhouse_console/internal/sim/repository"
	"greenhouse_console/internal/sim/server"
	"greenhouse_console/internal/sim/service"

	"github.com/spf13/viper"
)

const defaultTick = 2 * time.Second

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	pushHub := hub.New(log)
	services := service.NewService(repos, pushHub, signingKey(log))
	apiHandler := handlers.NewHandler(services, repos, pushHub, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the greenhouse engine (via composed service)
	go services.Engine.Run(ctx, engineTick())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("simulator.port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("simulator.db.path")
	if dbPath == "" {
		log.Infow("simulator.db.path not set in config; using default file", "default", "greenhouse.db")
		dbPath = "greenhouse.db"
	}
	return repository.InitDB(dbPath)
}

func signingKey(log *logger.Logger) string {
	key := viper.GetString("simulator.signing_key")
	if key == "" {
		log.Infow("simulator.signing_key not set; using development default")
		key = "dev-only-signing-key"
	}
	return key
}

func engineTick() time.Duration {
	if d := viper.GetDuration("simulator.tick"); d > 0 {
		return d
	}
	return defaultTick
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8081"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
