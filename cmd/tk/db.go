package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ptessari/turnkey/internal/config"
	"github.com/ptessari/turnkey/internal/db"
)

// connectFromConfig loads the config and opens a connection to the Turnkey
// database it names.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	gormDB, err := db.Connect(cfg.DB.Host, cfg.DB.Port, cfg.DB.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", cfg.DB.Database, err)
	}
	return cfg, gormDB, nil
}

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBResetCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var (
		configPath string
		demo       bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Turnkey database",
		Long:  "Creates the MySQL database, migrates all tables and seeds the default item catalog.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath, demo)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "turnkey.yaml", "path to Turnkey config file")
	cmd.Flags().BoolVar(&demo, "demo", false, "seed a demo property, unit and operator")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string, demo bool) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fmt.Fprintf(out, "Loaded config for owner %q from %s\n", cfg.Owner, configPath)

	adminDB, err := db.ConnectAdmin(cfg.DB.Host, cfg.DB.Port)
	if err != nil {
		return fmt.Errorf("connect to MySQL at %s:%d: %w", cfg.DB.Host, cfg.DB.Port, err)
	}
	fmt.Fprintf(out, "Connected to MySQL at %s:%d\n", cfg.DB.Host, cfg.DB.Port)

	if err := db.CreateDatabase(adminDB, cfg.DB.Database); err != nil {
		return err
	}
	fmt.Fprintf(out, "Database %s ready\n", cfg.DB.Database)

	gormDB, err := db.Connect(cfg.DB.Host, cfg.DB.Port, cfg.DB.Database)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.DB.Database, err)
	}

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	if err := db.SeedCatalog(gormDB); err != nil {
		return err
	}
	fmt.Fprintln(out, "Seeded default item catalog")

	if demo {
		if err := db.SeedDemo(gormDB); err != nil {
			return err
		}
		fmt.Fprintln(out, "Seeded demo property and operator")
	}

	fmt.Fprintln(out, "\nTurnkey database initialized successfully.")
	return nil
}

func newDBResetCmd() *cobra.Command {
	var (
		configPath string
		dbName     string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and re-initialize the Turnkey database",
		Long: `Drops the Turnkey database and optionally re-creates it from config.

By default, reads the config file to determine the database name, drops it,
then re-initializes (migrate + seed). With --database, drops the named
database without re-init.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBReset(cmd, configPath, dbName, yes)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "turnkey.yaml", "path to Turnkey config file")
	cmd.Flags().StringVar(&dbName, "database", "", "explicit database name (skip re-init)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func runDBReset(cmd *cobra.Command, configPath, dbName string, skipConfirm bool) error {
	out := cmd.OutOrStdout()

	var cfg *config.Config
	reinit := false

	if dbName == "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		dbName = cfg.DB.Database
		reinit = true
		fmt.Fprintf(out, "Loaded config for owner %q from %s\n", cfg.Owner, configPath)
	}

	if !skipConfirm {
		if !confirmReset(cmd, dbName) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	host := "127.0.0.1"
	port := 3306
	if cfg != nil {
		host = cfg.DB.Host
		port = cfg.DB.Port
	}

	adminDB, err := db.ConnectAdmin(host, port)
	if err != nil {
		return fmt.Errorf("connect to MySQL at %s:%d: %w", host, port, err)
	}
	fmt.Fprintf(out, "Connected to MySQL at %s:%d\n", host, port)

	if err := db.DropDatabase(adminDB, dbName); err != nil {
		return err
	}
	fmt.Fprintf(out, "Dropped database %s\n", dbName)

	if !reinit {
		fmt.Fprintln(out, "\nDatabase dropped successfully.")
		return nil
	}

	if err := db.CreateDatabase(adminDB, dbName); err != nil {
		return err
	}
	fmt.Fprintf(out, "Database %s re-created\n", dbName)

	gormDB, err := db.Connect(host, port, dbName)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", dbName, err)
	}

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	if err := db.SeedCatalog(gormDB); err != nil {
		return err
	}
	fmt.Fprintln(out, "Seeded default item catalog")

	fmt.Fprintln(out, "\nTurnkey database reset and re-initialized successfully.")
	return nil
}

func confirmReset(cmd *cobra.Command, dbName string) bool {
	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()

	fmt.Fprintf(out, "WARNING: This will permanently delete all data in database %q.\n", dbName)
	fmt.Fprintln(out, "This action cannot be undone.")
	fmt.Fprintln(out)
	fmt.Fprint(out, "Type \"yes\" to confirm: ")

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()) == "yes"
	}
	return false
}
