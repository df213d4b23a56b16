package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/goinvest/internal/infrastructure/auth"
	"github.com/iho/goinvest/internal/infrastructure/config"
	"github.com/iho/goinvest/internal/infrastructure/logger"
	"github.com/iho/goinvest/internal/infrastructure/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &clientOptions{}

	rootCmd := &cobra.Command{
		Use:           "goinvest-cli",
		Short:         "GoInvest CLI tool",
		Long:          `A command line interface for the GoInvest amendment and contract numbering API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.BaseURL, "url", "http://localhost:8080", "Base URL of the GoInvest API")
	flags.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "Request timeout")
	flags.StringVar(&opts.Actor, "actor", "", "Actor id sent as X-Actor-ID")
	flags.StringVar(&opts.Token, "token", "", "Bearer token for authenticated servers")
	flags.StringVar(&opts.IdempotencyKey, "idempotency-key", "", "Idempotency-Key for mutating requests")

	client := func() *apiClient { return newAPIClient(*opts) }

	rootCmd.AddCommand(
		newMigrateCmd(),
		newAmendmentCmd(client),
		newContractCmd(client),
		newTokenCmd(),
	)

	return rootCmd
}

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations (uses DATABASE_URL and MIGRATIONS_PATH)",
	}

	run := func(apply func(databaseURL, path string, log zerolog.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Output: cmd.ErrOrStderr()})
			return apply(cfg.DatabaseURL, cfg.MigrationsPath, log)
		}
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
	}
	versionCmd.RunE = run(func(databaseURL, path string, log zerolog.Logger) error {
		version, dirty, err := postgres.MigrationVersion(databaseURL, path, log)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(versionCmd.OutOrStdout(), "version %d (dirty: %v)\n", version, dirty)
		return err
	})

	migrateCmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", Args: cobra.NoArgs, RunE: run(postgres.RunMigrations)},
		&cobra.Command{Use: "down", Short: "Roll back the last migration", Args: cobra.NoArgs, RunE: run(postgres.RunMigrationsDown)},
		versionCmd,
	)

	return migrateCmd
}

func newAmendmentCmd(client func() *apiClient) *cobra.Command {
	amendmentCmd := &cobra.Command{
		Use:   "amendment",
		Short: "Amendment operations",
	}

	getCmd := &cobra.Command{
		Use:   "get <amendment-id>",
		Short: "Show an amendment with its projections and schedules",
		Args:  cobra.ExactArgs(1),
	}
	full := getCmd.Flags().Bool("full", false, "Include schedule periods")
	getCmd.RunE = func(cmd *cobra.Command, args []string) error {
		path := "/api/v1/amendments/" + args[0]
		if *full {
			path += "/full"
		}
		return call(cmd, client(), http.MethodGet, path, nil)
	}

	listCmd := &cobra.Command{
		Use:   "list <investment-id>",
		Short: "List the amendments of an investment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, client(), http.MethodGet, "/api/v1/investments/"+args[0]+"/amendments", nil)
		},
	}

	createCmd := &cobra.Command{
		Use:   "create <investment-id> <original-projection-id> <period> <amount>",
		Short: "Create an amendment in the Projected state",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid period %q: %w", args[2], err)
			}
			body := map[string]any{
				"original_projection_id": args[1],
				"increment_period":       period,
				"increment_amount":       args[3],
			}
			return call(cmd, client(), http.MethodPost, "/api/v1/investments/"+args[0]+"/amendments", body)
		},
	}

	incrementCmd := &cobra.Command{
		Use:   "increment <amendment-id> <increment-projection-id> <increment-schedule-id>",
		Short: "Attach the increment projection and schedule",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{
				"increment_projection_id": args[1],
				"increment_schedule_id":   args[2],
			}
			return call(cmd, client(), http.MethodPut, "/api/v1/amendments/"+args[0]+"/increment", body)
		},
	}

	documentsCmd := &cobra.Command{
		Use:   "documents <amendment-id>",
		Short: "Generate the amendment documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, client(), http.MethodPost, "/api/v1/amendments/"+args[0]+"/documents", nil)
		},
	}

	continueCmd := &cobra.Command{
		Use:   "continue <amendment-id>",
		Short: "Swap the active schedule and complete the amendment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, client(), http.MethodPost, "/api/v1/amendments/"+args[0]+"/continue", nil)
		},
	}

	amendmentCmd.AddCommand(getCmd, listCmd, createCmd, incrementCmd, documentsCmd, continueCmd)
	return amendmentCmd
}

func newContractCmd(client func() *apiClient) *cobra.Command {
	contractCmd := &cobra.Command{
		Use:   "contract",
		Short: "Contract numbering",
	}

	contractCmd.AddCommand(&cobra.Command{
		Use:   "number <request-id> <projection-id>",
		Short: "Get or mint the contract number for a request and projection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"request_id": args[0], "projection_id": args[1]}
			return call(cmd, client(), http.MethodPost, "/api/v1/contracts/numbers", body)
		},
	})

	return contractCmd
}

func newTokenCmd() *cobra.Command {
	var (
		secret string
		ttl    time.Duration
	)

	tokenCmd := &cobra.Command{
		Use:   "token <actor-id>",
		Short: "Issue a development JWT for an actor (JWT_SECRET or --secret)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return fmt.Errorf("no signing secret: set JWT_SECRET or pass --secret")
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	tokenCmd.Flags().StringVar(&secret, "secret", "", "Signing secret")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return tokenCmd
}

func call(cmd *cobra.Command, client *apiClient, method, path string, body any) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	raw, err := client.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), raw)
}

func printJSON(w io.Writer, raw []byte) error {
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		_, err = w.Write(raw)
		return err
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}
