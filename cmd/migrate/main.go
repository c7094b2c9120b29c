package main

import (
	"fmt"
	"os"

	"github.com/ogurasousui/face-attendance/internal/platform/config"
	pg "github.com/ogurasousui/face-attendance/internal/platform/db/postgres"
	"github.com/spf13/cobra"
)

// migrator はサブコマンドが利用するマイグレーション操作です。
type migrator interface {
	Up() error
	Down() error
	Drop() error
	Version() (pg.MigrationVersion, error)
	Close() error
}

type openFunc func(dir, dsn string) (migrator, error)

type rootOptions struct {
	configPath    string
	migrationsDir string
}

func main() {
	open := func(dir, dsn string) (migrator, error) {
		return pg.NewMigrator(dir, dsn)
	}
	if err := newRootCommand(open).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(open openFunc) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the attendance database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (defaults to CONFIG_PATH env or "+config.DefaultPath+")")
	root.PersistentFlags().StringVar(&opts.migrationsDir, "dir", "assets/migrations", "directory containing migration files")

	root.AddCommand(
		newActionCommand(opts, open, "up", "Apply all pending migrations", migrator.Up),
		newActionCommand(opts, open, "down", "Roll back all migrations", migrator.Down),
		newActionCommand(opts, open, "drop", "Drop every object in the database", migrator.Drop),
		newVersionCommand(opts, open),
	)
	return root
}

func newActionCommand(opts *rootOptions, open openFunc, use, short string, action func(migrator) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(opts, open, func(m migrator) error {
				if err := action(m); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "migration %s completed\n", use)
				return nil
			})
		},
	}
}

func newVersionCommand(opts *rootOptions, open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(opts, open, func(m migrator) error {
				v, err := m.Version()
				if err != nil {
					return err
				}
				if !v.Applied {
					fmt.Fprintln(cmd.OutOrStdout(), "no migration applied")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v.Version, v.Dirty)
				return nil
			})
		},
	}
}

func withMigrator(opts *rootOptions, open openFunc, fn func(migrator) error) (err error) {
	cfgPath := opts.configPath
	if cfgPath == "" {
		cfgPath, err = config.ResolvePath()
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if cfg.Storage.Driver != config.DriverPostgres {
		return fmt.Errorf("storage.driver is %q; migrations require %q", cfg.Storage.Driver, config.DriverPostgres)
	}

	m, err := open(opts.migrationsDir, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close migrator: %w", cerr)
		}
	}()

	return fn(m)
}
