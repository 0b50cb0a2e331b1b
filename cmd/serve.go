package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/abhisek/gcsetutor/internal/config"
	"github.com/abhisek/gcsetutor/internal/observability"
	"github.com/abhisek/gcsetutor/internal/server"
	"github.com/abhisek/gcsetutor/internal/turnlock"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tutoring HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if !cfg.LLM.HasAPIKey() {
			cfg.LLM.Provider = "mock"
		}
		if err := cfg.ValidateServer(); err != nil {
			return err
		}

		log, err := newLogger(cfg.Log)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdownTracing, err := observability.InitTracing(ctx, log, cfg.Tracing, version)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdownTracing(cmd.Context()); err != nil {
				log.Warn("tracing shutdown failed", "error", err)
			}
		}()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		eng, err := buildEngine(ctx, cfg, st, log)
		if err != nil {
			return err
		}

		var locker turnlock.Locker = turnlock.NewLocal()
		if cfg.Lock.Backend == config.LockRedis {
			client := redis.NewClient(&redis.Options{
				Addr:     cfg.Lock.RedisAddr,
				Password: cfg.Lock.RedisPassword,
				DB:       cfg.Lock.RedisDB,
			})
			defer client.Close()
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("connect to redis: %w", err)
			}
			lcfg := turnlock.DefaultRedisConfig()
			lcfg.TTL = cfg.Lock.TTL
			locker = turnlock.NewRedis(client, lcfg)
		}

		srv := server.New(cfg.Server, server.Deps{
			Orchestrator: eng.orchestrator,
			Locker:       locker,
			Evidence:     st.EvidenceRepo(),
			Selector:     eng.selector,
			Logger:       log,
		})
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides GCSE_ADDR)")
}
