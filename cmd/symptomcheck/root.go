package main

import (
	"github.com/spf13/cobra"

	"symptom-checker/internal/checker"
	"symptom-checker/internal/config"
	"symptom-checker/internal/kv"
	"symptom-checker/internal/logging"
)

// app holds what every subcommand shares: the resolved config and the
// history namespace.
type app struct {
	cfg    config.Config
	client string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var (
		driver, sqlitePath, databaseURL, redisAddr, logLevel string
	)

	root := &cobra.Command{
		Use:   "symptomcheck",
		Short: "Rule-based symptom checker",
		Long: `Walk through the symptom checker from the terminal.

Consultation history is kept in the configured store under the
healthHistory key, so the CLI and the server can share it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("store") {
				cfg.StoreDriver = driver
			}
			if flags.Changed("sqlite-path") {
				cfg.SQLitePath = sqlitePath
			}
			if flags.Changed("database-url") {
				cfg.DatabaseURL = databaseURL
			}
			if flags.Changed("redis-addr") {
				cfg.RedisAddr = redisAddr
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogJSON)
			a.cfg = cfg
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&driver, "store", config.DefaultStoreDriver, "History store: memory, sqlite, postgres or redis")
	pf.StringVar(&sqlitePath, "sqlite-path", config.DefaultSQLitePath, "SQLite database file")
	pf.StringVar(&databaseURL, "database-url", "", "Postgres connection string")
	pf.StringVar(&redisAddr, "redis-addr", "", "Redis address")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "Log level")
	pf.StringVar(&a.client, "client", "", "History namespace; empty uses the plain healthHistory key")

	root.AddCommand(newCatalogCmd())
	root.AddCommand(newDiagnoseCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newServeCmd(a))
	return root
}

func (a *app) openStore(cmd *cobra.Command) (kv.Store, error) {
	return kv.Open(cmd.Context(), kv.Options{
		Driver:      a.cfg.StoreDriver,
		SQLitePath:  a.cfg.SQLitePath,
		DatabaseURL: a.cfg.DatabaseURL,
		RedisAddr:   a.cfg.RedisAddr,
	})
}

func (a *app) historyKey() string {
	if a.client == "" {
		return checker.HistoryKey
	}
	return checker.HistoryKey + ":" + a.client
}
