package cli

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	v      *viper.Viper
	cfg    *Config
	logger *logrus.Logger
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	var configPath string

	rootCmd := &cobra.Command{
		Use:           "leandb",
		Short:         "Manage notes stored in MongoDB or a SQL database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(a.v, configPath)
			if err != nil {
				return err
			}

			logger, err := NewLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			a.cfg, a.logger = cfg, logger

			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (yaml, json or toml)")
	flags.String("driver", "", "store driver: mongodb, postgres, mysql or sqlite")
	flags.String("dsn", "", "store connection string")
	flags.String("log-level", "", "log level")
	flags.String("log-format", "", "log format: text or json")

	for key, flag := range map[string]string{
		"store.driver": "driver",
		"store.dsn":    "dsn",
		"log.level":    "log-level",
		"log.format":   "log-format",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(newNotesCmd(a))

	return rootCmd
}

// withNotes runs fn against the configured store and closes it afterwards.
func (a *app) withNotes(cmd *cobra.Command, fn func(ctx context.Context, repo *NotesRepository) error) error {
	ctx := cmd.Context()

	repo, closeFn, err := OpenNotes(ctx, a.cfg.Store, a.logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := closeFn(); err != nil {
			a.logger.WithError(err).Warn("failed to close store")
		}
	}()

	return fn(ctx, repo)
}
