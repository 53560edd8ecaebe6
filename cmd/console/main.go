package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"greenhouse_console/internal/api"
	"greenhouse_console/internal/control"
	"greenhouse_console/internal/logger"
	"greenhouse_console/internal/panel"
	"greenhouse_console/internal/reconcile"
	"greenhouse_console/internal/session"
	"greenhouse_console/internal/thresholds"

	"github.com/spf13/viper"
)

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// session manager first; the API client needs its token and the client's
	// unauthorized hook needs the manager back. The closure breaks the cycle.
	store := session.NewFileStore(tokenPath())
	var sess *session.Manager

	client := api.NewClient(api.Config{
		BaseURL: viper.GetString("console.server_url"),
		Token: func() string {
			return sess.Token()
		},
		OnUnauthorized: func() {
			sess.ForceLogout("session expired")
		},
	}, log)

	sess = session.NewManager(client, store, log)
	sess.OnTerminate(func(reason string) {
		log.Infow("session_ended", "reason", reason)
	})

	// wire the console core
	rec := reconcile.New(client, log)
	modes := control.NewController(client, log)
	thr := thresholds.NewSync(client, log)

	p := panel.New(panel.Deps{
		Session:    sess,
		Reconciler: rec,
		Modes:      modes,
		Thresholds: thr,
		Notifier:   panel.NewLogNotifier(log),
		Log:        log,
		WSURL:      viper.GetString("console.ws_url"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)
	log.Infow("console started", "server", viper.GetString("console.server_url"))

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down console...")
	p.Teardown()
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// tokenPath resolves where the session token is persisted between runs.
func tokenPath() string {
	if p := viper.GetString("console.token_path"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".greenhouse_token"
	}
	return filepath.Join(home, ".greenhouse", "token")
}
