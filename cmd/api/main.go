package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"taskFlow/internal/app"
	"taskFlow/internal/config"
	"taskFlow/internal/logger"
	"taskFlow/internal/migrations"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "taskflow",
	Short: "Сервис управления задачами",
	Long: `taskflow - REST API для задач, пользовательских категорий и статистики.

Конфигурация читается из config.yml, переменные окружения TASKFLOW_*
имеют приоритет над файлом.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "путь к config.yml")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP сервер",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Управление схемой PostgreSQL",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Применить все миграции",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return migrations.Up(cfg.Database.URL)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Откатить миграции (по умолчанию одну)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("steps должен быть положительным числом: %q", args[0])
			}
			steps = n
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return migrations.Down(cfg.Database.URL, steps)
	},
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(logger.Options{Development: cfg.Logging.Development}); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg)
	if err := a.Init(ctx); err != nil {
		return err
	}
	return a.Run(ctx)
}
