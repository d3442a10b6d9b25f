package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kiddoHope/steadysocial-sub000/internal/broker"
	"github.com/kiddoHope/steadysocial-sub000/internal/config"
	"github.com/kiddoHope/steadysocial-sub000/internal/engine"
	"github.com/kiddoHope/steadysocial-sub000/internal/host"
	"github.com/kiddoHope/steadysocial-sub000/internal/memory"
	"github.com/kiddoHope/steadysocial-sub000/internal/models"
	"github.com/kiddoHope/steadysocial-sub000/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SteadySocial inference service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.ConfigPath())
		if err != nil {
			return err
		}

		if hostFlag, _ := cmd.Flags().GetString("host"); hostFlag != "" {
			cfg.Host = hostFlag
		}
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Port = port
		}
		if model, _ := cmd.Flags().GetString("model"); model != "" {
			cfg.Model = model
		}
		if memEnabled, _ := cmd.Flags().GetBool("memory"); memEnabled {
			cfg.MemoryEnabled = true
		}
		if memDir, _ := cmd.Flags().GetString("memory-dir"); memDir != "" {
			cfg.MemoryDir = memDir
		}

		if cfg.Model == "" {
			return fmt.Errorf("no model configured: pass --model or set model in %s", config.ConfigPath())
		}
		if err := config.EnsureDirs(cfg); err != nil {
			return err
		}

		store := models.NewStore(config.ModelsDir())
		modelPath, err := store.Resolve(cfg.Model)
		if err != nil {
			return fmt.Errorf("%w (use 'steadysocial pull <url>' to download one)", err)
		}

		opts := engine.DefaultOptions()
		opts.BinDir = config.BinDir()
		opts.GPULayers = cfg.GPULayers
		opts.CtxSize = cfg.CtxSize
		opts.Threads = cfg.Threads
		opts.FlashAttention = cfg.FlashAttention

		eng := engine.NewLlama(opts)
		defer eng.Close()

		h := host.New(eng)
		h.Start()
		defer h.Close()

		b := broker.New(h, broker.WithRequestTimeout(cfg.RequestTimeout))

		var history memory.Store
		if cfg.MemoryEnabled {
			history, err = memory.NewChromemStore(cfg.MemoryDir, memory.NewEngineEmbedFunc(eng))
			if err != nil {
				return err
			}
			defer history.Close()
			log.Info().Str("dir", cfg.MemoryDir).Msg("generation history enabled")
		}

		if err := b.InitModel(modelPath); err != nil {
			return err
		}
		log.Info().Str("model", modelPath).Msg("loading model")

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.New(cfg, b, history)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().String("host", "", "bind address")
	serveCmd.Flags().Int("port", 0, "listen port")
	serveCmd.Flags().String("model", "", "model name or path to load")
	serveCmd.Flags().Bool("memory", false, "enable generation history")
	serveCmd.Flags().String("memory-dir", "", "history storage directory")
	rootCmd.AddCommand(serveCmd)
}
