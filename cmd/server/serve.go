package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"gridsync/internal/config"
	"gridsync/internal/engine"
	"gridsync/internal/infrastructure/storage"
	"gridsync/internal/network"
	"gridsync/internal/server"
	"gridsync/internal/version"
	"gridsync/pkg/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	addr  string
	seed  int64
	debug bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the game server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().Int64Var(&serveFlags.seed, "seed", 0, "world seed (0 keeps config value)")
	serveCmd.Flags().BoolVar(&serveFlags.debug, "debug", false, "expose /debug and pprof")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.addr != "" {
		cfg.Server.Addr = serveFlags.addr
	}
	if serveFlags.seed != 0 {
		cfg.Sim.Seed = serveFlags.seed
	}
	if serveFlags.debug {
		cfg.Server.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.Log.WithField("component", "main")
	log.Info("Starting gridsync...")
	log.Info(version.String())

	store, err := storage.Open(cfg.Storage.Driver, cfg.StorageDSN())
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("Failed to close player store")
		}
	}()

	var journals *storage.JournalService
	var journal *storage.Journal
	if cfg.Storage.JournalDir != "" {
		if journals, err = storage.NewJournalService(cfg.Storage.JournalDir); err != nil {
			return err
		}
	}

	engineCfg := engineConfig(cfg)
	if journals != nil {
		journal = storage.NewJournal(engineCfg.Seed)
	}

	hub := network.NewHub(cfg.Server.PeerBuffer)
	inst, err := engine.NewInstance(engineCfg, engine.Deps{
		Hub:     hub,
		Store:   store,
		Journal: journal,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	instDone := make(chan error, 1)
	go func() { instDone <- inst.Run(ctx) }()

	srv := server.New(inst, hub, cfg.Server.Addr, cfg.Server.Debug)
	serveErr := srv.Run(ctx)
	stop()
	if err := <-instDone; err != nil {
		log.WithError(err).Error("Instance stopped with error")
	}

	if journals != nil {
		path, err := journals.Save(inst.Journal())
		if err != nil {
			log.WithError(err).Error("Failed to save journal")
		} else {
			log.WithFields(logrus.Fields{"path": path, "records": inst.Journal().Len()}).Info("Journal saved")
		}
	}

	log.Info("Done.")
	if errors.Is(serveErr, context.Canceled) {
		return nil
	}
	return serveErr
}

// engineConfig переносит настройки симуляции в конфиг движка.
func engineConfig(cfg config.Config) engine.Config {
	ec := engine.NewConfig()
	if cfg.Sim.Seed != 0 {
		ec.Seed = cfg.Sim.Seed
	}
	ec.TickRate = cfg.Sim.TickRate
	ec.ScopeRadius = cfg.Sim.ScopeRadius
	ec.StepInterval = cfg.Sim.StepInterval
	ec.FilteredLoad = cfg.Sim.FilteredLoad
	ec.WorldWidth = cfg.World.Width
	ec.WorldDepth = cfg.World.Depth
	ec.ChunkSize = cfg.World.ChunkSize
	ec.Combat.AutoAttackCooldown = cfg.Sim.AutoAttackCooldown
	return ec
}
