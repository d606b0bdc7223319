package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/graduates/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/graduates/internal/application"
	"github.com/ericfisherdev/graduates/internal/config"
	"github.com/ericfisherdev/graduates/internal/logging"
)

// cliState carries configuration from the root command to its subcommands.
type cliState struct {
	dbPath     string
	listenAddr string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	st := &cliState{}

	root := &cobra.Command{
		Use:   "graduates",
		Short: "Graduate directory with an API-key protected read API",
		Long: `graduates stores graduate records in SQLite, serves them through a
JSON read API and an admin UI, and manages the API key that guards the API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = st.dbPath
			}
			if cmd.Flags().Changed("listen") {
				cfg.ListenAddr = st.listenAddr
			}

			logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			st.cfg = cfg
			st.logger = logger
			return nil
		},
	}

	root.PersistentFlags().StringVar(&st.dbPath, "db", "", "SQLite database path (overrides GRADUATES_DB_PATH)")
	root.PersistentFlags().StringVar(&st.listenAddr, "listen", "", "HTTP listen address (overrides GRADUATES_LISTEN_ADDR)")

	root.AddCommand(newServeCmd(st))
	root.AddCommand(newInstallCmd(st))
	root.AddCommand(newUninstallCmd(st))
	root.AddCommand(newAPIKeyCmd(st))
	root.AddCommand(newSecurityCmd(st))
	root.AddCommand(newGraduateCmd(st))

	return root
}

// app is the wired set of adapters and services shared by every command.
type app struct {
	db          *sqliteadapter.DB
	secrets     *application.SecretStore
	credentials *application.CredentialManager
	guard       *application.AccessGuard
	listing     *application.ListingQuery
	graduates   *application.GraduateService
	lifecycle   *application.Lifecycle
	operators   *application.OperatorGate
}

// openApp opens the database, applies migrations and wires the services.
func openApp(ctx context.Context, st *cliState) (*app, error) {
	db, err := sqliteadapter.NewDB(ctx, st.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	st.logger.DebugContext(ctx, "database opened", "path", db.Path())

	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	st.logger.DebugContext(ctx, "schema up to date", "version", version)

	settingsStore := sqliteadapter.NewSettingsRepo(db)
	graduateStore := sqliteadapter.NewGraduateRepo(db)
	capabilityStore := sqliteadapter.NewCapabilityRepo(db)

	secrets := application.NewSecretStore(settingsStore, st.cfg.InstallSalt)
	credentials := application.NewCredentialManager(secrets, application.NewCredentialCipher(), st.logger)

	return &app{
		db:          db,
		secrets:     secrets,
		credentials: credentials,
		guard:       application.NewAccessGuard(credentials, st.logger),
		listing:     application.NewListingQuery(graduateStore),
		graduates:   application.NewGraduateService(graduateStore, st.cfg.Location),
		lifecycle:   application.NewLifecycle(capabilityStore, secrets, st.logger),
		operators:   application.NewOperatorGate(st.cfg.AdminToken, capabilityStore),
	}, nil
}

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, st *cliState, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := openApp(ctx, st)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.db.Close(); closeErr != nil {
			st.logger.Error("error closing database", "error", closeErr)
		}
	}()

	return fn(ctx, a)
}

func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
