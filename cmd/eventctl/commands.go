package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/adapters/repository"
	"github.com/AchilleasB/campus-events/event-service/internal/config"
	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
)

const dbTimeout = 10 * time.Second

// cliActor is who the CLI acts as for admin-only service calls.
var cliActor = domain.Actor{Email: "eventctl", Role: domain.RoleAdmin}

// env is what commands reach outside the process through. Tests replace
// the database and account store.
type env struct {
	out      io.Writer
	logger   *zap.Logger
	openDB   func(url string) (*sql.DB, error)
	accounts func(db *sql.DB, logger *zap.Logger) ports.AccountRepository
	migrate  func(db *sql.DB) error
	status   func(db *sql.DB) error
}

func newEnv() *env {
	return &env{
		out:    os.Stdout,
		logger: zap.NewNop(),
		openDB: func(url string) (*sql.DB, error) { return sql.Open("postgres", url) },
		accounts: func(db *sql.DB, logger *zap.Logger) ports.AccountRepository {
			base := repository.NewSQLRepository(db, config.NewCircuitBreaker(config.BreakerPostgres, logger), dbTimeout, logger)
			return repository.NewAccountRepository(base)
		},
		migrate: repository.RunMigrations,
		status:  repository.MigrationStatus,
	}
}

func execute(e *env) int {
	root := newRootCmd(e)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type rootFlags struct {
	databaseURL string
	policyFile  string
	logLevel    string
}

func newRootCmd(e *env) *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "eventctl",
		Short:         "Administer the campus event service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := config.NewLogger(config.Log{Level: flags.logLevel, Format: "console"})
			if err != nil {
				return err
			}
			e.logger = logger
			return nil
		},
	}
	cmd.SetOut(e.out)
	cmd.PersistentFlags().StringVar(&flags.databaseURL, "database-url", os.Getenv("DB_CONNECTION_STRING"), "PostgreSQL connection string")
	cmd.PersistentFlags().StringVar(&flags.policyFile, "role-policy", os.Getenv("ROLE_POLICY_FILE"), "role policy YAML file (default policy when empty)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level")

	cmd.AddCommand(
		newMigrateCmd(e, flags),
		newCreateUserCmd(e, flags),
		newUsersCmd(e, flags),
		newRoleCmd(e, flags),
	)
	return cmd
}

func (e *env) db(flags *rootFlags) (*sql.DB, error) {
	if flags.databaseURL == "" {
		return nil, errors.New("--database-url or DB_CONNECTION_STRING is required")
	}
	return e.openDB(flags.databaseURL)
}

func (e *env) userService(flags *rootFlags) (*services.UserService, func(), error) {
	resolver, err := loadResolver(flags)
	if err != nil {
		return nil, nil, err
	}
	db, err := e.db(flags)
	if err != nil {
		return nil, nil, err
	}
	return services.NewUserService(e.accounts(db, e.logger), resolver, e.logger), func() { db.Close() }, nil
}

func loadResolver(flags *rootFlags) (*services.RoleResolver, error) {
	policy, err := config.LoadRolePolicy(flags.policyFile)
	if err != nil {
		return nil, err
	}
	return services.NewRoleResolver(policy), nil
}

func newMigrateCmd(e *env, flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := e.db(flags)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := e.migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}, &cobra.Command{
		Use:   "status",
		Short: "Print the state of each migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := e.db(flags)
			if err != nil {
				return err
			}
			defer db.Close()
			return e.status(db)
		},
	})
	return cmd
}

func newCreateUserCmd(e *env, flags *rootFlags) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account; the role follows from the email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("EVENTCTL_PASSWORD")
			}
			users, closeDB, err := e.userService(flags)
			if err != nil {
				return err
			}
			defer closeDB()

			ctx, cancel := context.WithTimeout(cmd.Context(), dbTimeout)
			defer cancel()
			view, err := users.Bootstrap(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s\n", view.Email, view.Role, view.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or EVENTCTL_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newUsersCmd(e *env, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List accounts with their resolved roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, closeDB, err := e.userService(flags)
			if err != nil {
				return err
			}
			defer closeDB()

			ctx, cancel := context.WithTimeout(cmd.Context(), dbTimeout)
			defer cancel()
			views, err := users.List(ctx, cliActor)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EMAIL\tROLE\tCREATED")
			for _, v := range views {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Email, v.Role, v.CreatedAt.UTC().Format(domain.DateLayout))
			}
			return tw.Flush()
		},
	}
}

func newRoleCmd(_ *env, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "role EMAIL",
		Short: "Print the role an email resolves to under the role policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := loadResolver(flags)
			if err != nil {
				return err
			}
			role := resolver.RoleForEmail(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", args[0], role, domain.RootPath(role))
			return nil
		},
	}
}
