package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fundora/kyb-cli/internal/config"
	"github.com/fundora/kyb-cli/internal/questionnaire"
	"github.com/fundora/kyb-cli/internal/server"
	"github.com/fundora/kyb-cli/internal/session"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve questionnaire sessions over HTTP",
	Long: `Start the JSON HTTP API. Each session holds its own answers and
position and expires after server.session_ttl_minutes of inactivity.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(cfg)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv, store := buildServer(cfg, env, port)

		sweep := time.Duration(cfg.Server.SessionTTLMinutes) * time.Minute / 2
		if sweep < time.Minute {
			sweep = time.Minute
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(srv.Start)
		g.Go(func() error { return store.Run(gctx, sweep) })
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		zap.L().Info("serving questionnaire",
			zap.Int("port", port),
			zap.Int("sections", len(env.Questionnaire.Sections)),
		)
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// buildServer wires the session store and the HTTP server from config.
func buildServer(c *config.Config, env *appEnv, port int) (*server.Server, *session.Store) {
	factory := func() *questionnaire.Controller {
		return questionnaire.NewController(env.Questionnaire, env.Builder)
	}
	ttl := time.Duration(c.Server.SessionTTLMinutes) * time.Minute
	store := session.NewStore(factory, ttl, c.Server.MaxSessions)

	srv := server.New(server.Config{
		Port:           port,
		Questionnaire:  env.Questionnaire,
		Store:          store,
		Tables:         env.Tables,
		Builder:        env.Builder,
		RateLimit:      c.Server.RateLimit,
		RateBurst:      c.Server.RateBurst,
		AllowedOrigins: c.Server.AllowedOrigins,
		Report:         reportOptions(c),
	})
	return srv, store
}
