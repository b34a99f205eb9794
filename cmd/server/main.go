package main

import (
	"fmt"
	"os"

	"github.com/St1cky1/task-tracker/internal/config"
	"github.com/St1cky1/task-tracker/internal/log"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "task-tracker",
	Short: "Employee and task tracker API",
	// без подкоманды запускаем сервер
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runMigrations(cfg)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "path to .env file (default .env if present)")
	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}

	cfg, err := config.Load(files...)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log.SetLevel(cfg.App.LogLevel)
	return cfg, nil
}
