package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"gridsync/internal/agent"
	"gridsync/pkg/logger"

	"github.com/spf13/cobra"
)

var botFlags struct {
	url   string
	count int
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Connect headless bots to a running server",
	RunE:  runBots,
}

func init() {
	botCmd.Flags().StringVar(&botFlags.url, "url", "", "server WebSocket URL (overrides config)")
	botCmd.Flags().IntVar(&botFlags.count, "count", 0, "number of bots (overrides config)")
}

func runBots(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if botFlags.url != "" {
		cfg.Bot.URL = botFlags.url
	}
	if botFlags.count > 0 {
		cfg.Bot.Count = botFlags.count
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for i := range cfg.Bot.Count {
		var clientID uint64
		if cfg.Bot.ClientID != 0 {
			clientID = cfg.Bot.ClientID + uint64(i)
		}
		name := fmt.Sprintf("%s-%d", cfg.Bot.Name, i+1)

		bot, err := agent.Dial(ctx, cfg.Bot.URL, name, clientID, int64(i+1))
		if err != nil {
			stop()
			wg.Wait()
			return err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := bot.Run(ctx, cfg.Bot.Think); err != nil {
				logger.Log.WithError(err).WithField("name", name).Warn("Bot stopped")
			}
		}()
	}

	wg.Wait()
	return nil
}
