package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/chameleon-db/errfmt/internal/config"
	"github.com/chameleon-db/errfmt/pkg/errfmt"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec <sql>",
	Short: "Run a statement and format the database error it raises",
	Long: `Run a single SQL statement against PostgreSQL. When it fails, the error is
printed with its constraint, table, field values, detail and SQL.

The connection string comes from DATABASE_URL or the database section of
` + config.FileName + `.

Examples:
  errfmt exec "INSERT INTO users (email) VALUES ('taken@mail.com')"
  DATABASE_URL=postgresql://localhost/app errfmt exec "DELETE FROM users WHERE id = 1"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sql := strings.TrimSpace(args[0])
		if sql == "" {
			return fmt.Errorf("empty statement")
		}

		cfg := appConfig
		if cfg == nil {
			cfg = config.Default()
		}

		failure, err := runStatement(cmd.Context(), cfg.Database, sql)
		if err != nil {
			return err
		}
		if failure != nil {
			fmt.Fprintln(cmd.OutOrStdout(), highlight(errfmt.FormatError(failure)))
			return errReported
		}

		printSuccess("Statement executed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
}

// runStatement executes sql. Connection problems are returned as err;
// a failure of the statement itself is returned as failure, mapped to a
// DatabaseError when PostgreSQL raised it.
func runStatement(ctx context.Context, dbCfg config.DatabaseConfig, sql string) (failure error, err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	poolConfig, err := pgxpool.ParseConfig(dbCfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}
	poolConfig.MaxConns = dbCfg.MaxConnections
	if timeout := dbCfg.ConnectTimeoutDuration(); timeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = timeout
	}

	printInfo("Connecting to %s:%d", poolConfig.ConnConfig.Host, poolConfig.ConnConfig.Port)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	execCtx := ctx
	if timeout := dbCfg.StatementTimeoutDuration(); timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	printInfo("Executing statement")
	if _, err := pool.Exec(execCtx, sql); err != nil {
		return errfmt.FromPgError(err, sql), nil
	}
	return nil, nil
}
