package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wayfarer-labs/planner/internal/backup"
	"github.com/wayfarer-labs/planner/internal/database"
	"github.com/wayfarer-labs/planner/internal/models"
	"github.com/wayfarer-labs/planner/internal/modules/auth"
	"github.com/wayfarer-labs/planner/internal/modules/plan"
	"github.com/wayfarer-labs/planner/internal/seed"
)

var (
	success = color.New(color.FgGreen)
	faint   = color.New(color.Faint)
	warn    = color.New(color.FgYellow)
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Migrate(c.db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			success.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", c.cfg.Database.Driver)
			return nil
		},
	}
}

func newUserCmd(c *cli) *cobra.Command {
	user := &cobra.Command{Use: "user", Short: "Manage accounts"}

	var password string
	add := &cobra.Command{
		Use:   "add EMAIL",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := auth.NewService(c.db, auth.WithLogger(c.logger))
			u, err := svc.Register(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			success.Fprintf(cmd.OutOrStdout(), "created %s ", u.Email)
			faint.Fprintf(cmd.OutOrStdout(), "(%s)\n", u.ID)
			return nil
		},
	}
	add.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = add.MarkFlagRequired("password")

	user.AddCommand(add)
	return user
}

func newSeedCmd(c *cli) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add the built-in world landmarks to a user's collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := c.userByEmail(cmd, email)
			if err != nil {
				return err
			}
			created, err := seed.Landmarks(cmd.Context(), c.db, u.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, lm := range created {
				success.Fprintf(out, "  + %s ", lm.Name)
				faint.Fprintf(out, "(%.4f, %.4f)\n", lm.Latitude, lm.Longitude)
			}
			fmt.Fprintf(out, "%d landmarks added, %d already present\n", len(created), len(seed.World())-len(created))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "user", "u", "", "email of the owning user")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newPlansCmd(c *cli) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List a user's visiting plans with progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := c.userByEmail(cmd, email)
			if err != nil {
				return err
			}
			views, err := plan.NewService(c.db, plan.WithLogger(c.logger)).List(cmd.Context(), u.ID, true)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(views) == 0 {
				faint.Fprintln(out, "no plans yet")
				return nil
			}
			for _, v := range views {
				visited := 0
				for _, it := range v.Items {
					if it.Visited {
						visited++
					}
				}
				status := faint.Sprint("in progress")
				if v.IsCompleted {
					status = success.Sprint("completed")
				}
				fmt.Fprintf(out, "#%d %s %s %d/%d %s\n", v.ID, v.Name, faint.Sprint(v.Color), visited, len(v.Items), status)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "user", "u", "", "email of the owning user")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newBackupCmd(c *cli) *cobra.Command {
	var (
		upload bool
		keep   int
	)
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export the planner tables into a ZIP archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []backup.Option{backup.WithLogger(c.logger)}
			if upload {
				up, err := backup.NewS3Uploader(c.cfg.Backup.S3)
				if err != nil {
					return err
				}
				opts = append(opts, backup.WithUploader(up))
			}
			svc := backup.New(c.db, c.cfg.BackupDir(), opts...)
			art, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			success.Fprintf(out, "Backup created: %s\n", art.Path)
			for _, table := range backup.Tables() {
				faint.Fprintf(out, "  %-18s %d rows\n", table, art.Rows[table])
			}
			if art.ObjectKey != "" {
				success.Fprintf(out, "Uploaded to s3://%s/%s\n", c.cfg.Backup.S3.Bucket, art.ObjectKey)
			}
			if keep > 0 {
				removed, err := svc.Prune(keep)
				if err != nil {
					return err
				}
				if removed > 0 {
					warn.Fprintf(out, "pruned %d old archives\n", removed)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&upload, "upload", false, "also upload to the configured S3 bucket")
	cmd.Flags().IntVar(&keep, "keep", 0, "keep only the newest N local archives")
	return cmd
}

func newClearCmd(c *cli) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every landmark, plan, plan item and visit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear without --yes")
			}
			counts, err := database.Clear(cmd.Context(), c.db)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range []interface{ TableName() string }{
				models.VisitLog{}, models.PlanItem{}, models.VisitingPlan{}, models.Landmark{},
			} {
				name := m.TableName()
				fmt.Fprintf(out, "  %-18s %d deleted\n", name, counts[name])
			}
			warn.Fprintln(out, "database cleared (users kept)")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
