// @title AdoptiPet API
// @version 1.0
// @description Adopción de mascotas, cuidados y tienda de insumos.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"os"

	"adoptipet/internal/platform/config"
	"adoptipet/internal/platform/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// configPath apunta al YAML opcional; env siempre pisa.
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "adoptipet",
	Short: "API de adopción de mascotas y tienda",
	Long: `adoptipet levanta la API HTTP y expone tareas de operación.

Examples:
  # API con defaults de dev (memoria, auth por headers X-Debug-*)
  adoptipet serve

  # Aplicar migraciones
  ADOPTIPET_DB_DSN=postgres://... adoptipet migrate

  # Correr una pasada de recordatorios y salir
  adoptipet sweep`,
	Version:       version,
	SilenceUsage:  true,
	// .env es opcional: sólo para dev local.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "ruta al archivo YAML de configuración")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sweepCmd)
}

func loadConfig() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    "adoptipet",
	})
	return cfg, log, nil
}
