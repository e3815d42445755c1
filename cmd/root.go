package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/cbseprep/internal/chat"
	"github.com/abhisek/cbseprep/internal/config"
	"github.com/abhisek/cbseprep/internal/logging"
	"github.com/abhisek/cbseprep/internal/query"
	"github.com/abhisek/cbseprep/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "cbseprep",
	Short: "Exam-ready answers from your NCERT books",
	Long:  "cbseprep is a terminal study companion for CBSE students (classes 7-12). Ask syllabus questions and get answers shaped to the marks they carry.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CBSEPREP_DB env var)")
	rootCmd.PersistentFlags().String("api-url", "", "Answer service base URL (overrides CBSEPREP_API_URL env var)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(queriesCmd)
	rootCmd.AddCommand(subjectsCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(devserverCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// loadConfig reads .env and CBSEPREP_* variables, then applies flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := config.FromEnv()
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if u, _ := cmd.Flags().GetString("api-url"); u != "" {
		cfg.APIURL = u
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db / CBSEPREP_DB first,
// then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// env is what every command that touches local data needs.
type env struct {
	cfg      config.Config
	store    *store.Store
	logger   *zap.Logger
	closeLog func()
}

// openEnv loads configuration, opens the log file and the database. On
// failure the log file is flushed and closed before returning.
func openEnv(cmd *cobra.Command) (_ *env, err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logPath := cfg.LogFile
	if logPath == "" {
		if logPath, err = store.DefaultLogPath(); err != nil {
			return nil, fmt.Errorf("resolve log path: %w", err)
		}
	}
	logger, closeLog, err := logging.New(logPath, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() {
		if err != nil {
			logger.Error("startup failed", zap.String("command", cmd.CommandPath()), zap.Error(err))
			closeLog()
		}
	}()

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	logger.Info("started", zap.String("command", cmd.CommandPath()), zap.String("db", dbPath))
	return &env{cfg: cfg, store: st, logger: logger, closeLog: closeLog}, nil
}

func (e *env) Close() {
	_ = e.store.Close()
	e.closeLog()
}

func (e *env) client() *query.Client {
	return query.NewClient(e.cfg.APIURL,
		query.WithTimeout(e.cfg.RequestTimeout),
		query.WithHealthTTL(e.cfg.HealthTTL),
		query.WithLogger(e.logger.Named("query")),
	)
}

// asker is the client with every attempt recorded for `queries`.
func (e *env) asker(c *query.Client) query.Asker {
	return query.WithRecording(c, e.store.EventRepo(), e.logger.Named("query"))
}

func (e *env) chats() *chat.Store {
	return chat.NewStore(e.store.KV(), chat.WithLogger(e.logger.Named("chat")))
}
