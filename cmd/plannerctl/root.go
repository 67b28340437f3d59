package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wayfarer-labs/planner/internal/config"
	"github.com/wayfarer-labs/planner/internal/database"
	"github.com/wayfarer-labs/planner/internal/models"
)

// cli is the state shared by every subcommand.
type cli struct {
	configPath string
	verbose    bool
	cfg        *config.AppConfig
	db         *gorm.DB
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "plannerctl",
		Short:         "Maintenance tasks for the landmark planner",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `Maintenance tasks for the landmark planner database.

Examples:
  plannerctl migrate
  plannerctl user add ada@example.com --password hunter22
  plannerctl seed --user ada@example.com
  plannerctl plans --user ada@example.com
  plannerctl backup
  plannerctl clear --yes`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = zap.NewNop()
			if c.verbose {
				if c.logger, err = zap.NewDevelopment(); err != nil {
					return err
				}
			}
			// migrate runs the schema itself so it can report it
			c.db, err = database.Connect(cfg, cmd.Name() != "migrate")
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			_ = c.logger.Sync()
			return database.Close(c.db)
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", config.DefaultConfigPath, "path to YAML config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log progress")

	root.AddCommand(
		newMigrateCmd(c),
		newUserCmd(c),
		newSeedCmd(c),
		newPlansCmd(c),
		newBackupCmd(c),
		newClearCmd(c),
	)
	return root
}

func (c *cli) userByEmail(cmd *cobra.Command, email string) (*models.UserModel, error) {
	var u models.UserModel
	if err := c.db.WithContext(cmd.Context()).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, fmt.Errorf("user %s: %w", email, err)
	}
	return &u, nil
}
