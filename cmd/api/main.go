package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Laisky/errors/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hrcms/cmd/app"
	"hrcms/internal/config"
	"hrcms/internal/logger"
)

var (
	configFile string
	logLevel   string
)

var rootCMD = &cobra.Command{
	Use:          "blogd",
	Short:        "blogd",
	Long:         `blog and CMS API for the HR outsourcing site`,
	SilenceUsage: true,
}

var serveCMD = &cobra.Command{
	Use:   "serve",
	Short: "run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(true)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			log.Error("start", zap.Error(err))
			return err
		}
		return a.Run(ctx)
	},
}

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "create indexes or apply the SQL schema, then exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(false)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx := cmd.Context()
		store, _, err := app.Connect(ctx, cfg, log)
		if err != nil {
			return errors.Wrap(err, "connect database")
		}
		defer func() { _ = store.Close(ctx) }()

		if err = app.Migrate(ctx, store, log); err != nil {
			return errors.Wrap(err, "migrate")
		}
		log.Info("migration finished", zap.String("database", store.Name()))
		return nil
	},
}

// setup loads the configuration, applies flag overrides and builds the logger.
// Only serving needs the full configuration to be valid.
func setup(validate bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if validate {
		if err = cfg.Validate(); err != nil {
			return nil, nil, errors.Wrap(err, "invalid configuration")
		}
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, errors.Wrap(err, "build logger")
	}
	return cfg, log, nil
}

func init() {
	rootCMD.PersistentFlags().StringVar(&configFile, "config-file", "", "path to a .env file (default ./.env when present)")
	rootCMD.PersistentFlags().StringVar(&logLevel, "log-level", "", "`debug/info/warn/error`, overrides LOG_LEVEL")
	rootCMD.AddCommand(serveCMD, migrateCMD)
}

func main() {
	if err := rootCMD.Execute(); err != nil {
		os.Exit(1)
	}
}
