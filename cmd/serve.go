package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/companion/internal/config"
	"github.com/Vovarama1992/companion/internal/delivery"
	"github.com/Vovarama1992/companion/internal/delivery/ws"
	"github.com/Vovarama1992/companion/internal/domain"
	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
)

func serveCMD() *cobra.Command {
	cfg := config.Load()

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the websocket chat server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(cmd, false)
			if err != nil {
				return err
			}
			defer log.Sync()
			zl := logger.NewZapLogger(log.Sugar())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.closeDB()

			if cfg.AuthPassword != "" && cfg.AuthSecret == "" {
				log.Warn("AUTH_SECRET is not set; tokens will not survive a restart")
			}
			authService := domain.NewAuthService(cfg.AuthPassword, cfg.AuthSecret)

			sessions := domain.NewSessionManager(a.pipeline, a.repo, a.options(), log)
			defer sessions.CloseAll()

			hub := ws.NewHub(log)

			r := chi.NewRouter()
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   []string{"*"},
				AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders:   []string{"Content-Type", "X-Auth"},
				AllowCredentials: true,
			}))

			delivery.RegisterRoutes(r,
				delivery.NewAuthHandler(authService, zl),
				authService,
				delivery.NewAssetHandler(a.repo, zl),
				ws.WSHandler(hub, sessions, log),
				cfg.ImageDir, cfg.VideoDir,
			)

			r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("ok"))
			})

			srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

			go func() {
				<-ctx.Done()
				sessions.CloseAll()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			zl.Log(logger.LogEntry{
				Level:   "info",
				Message: "server started",
				Fields:  map[string]any{"port": cfg.Port},
			})

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zl.Log(logger.LogEntry{
					Level:   "error",
					Message: "server crashed",
					Error:   err,
				})
				return err
			}
			return nil
		},
	}
	bindFlags(serve, &cfg)
	serve.Flags().StringVar(&cfg.Port, "port", cfg.Port, "listen port")
	serve.Flags().StringVar(&cfg.AuthPassword, "password", cfg.AuthPassword, "shared password for the web display (auth off if empty)")

	return serve
}
