// Package main - точка входа gridsync: сервер, боты и просмотр журналов.
package main

import (
	"fmt"
	"os"

	"gridsync/internal/config"
	"gridsync/pkg/logger"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "gridsync",
	Short: "Authoritative tile-grid game server",
	Long:  `gridsync runs one authoritative world and replicates it to thin clients over WebSocket.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig читает конфиг и настраивает логгер по нему.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	logger.Configure(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}
