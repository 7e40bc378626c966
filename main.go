package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mr-tron/base58"
	"github.com/shandysiswandi/gosend/internal/app"
	"github.com/shandysiswandi/gosend/internal/issuer"
	"github.com/shandysiswandi/gosend/internal/issuer/store"
	"github.com/shandysiswandi/gosend/internal/issuer/usecase"
	"github.com/shandysiswandi/gosend/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gosend/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gosend/internal/pkg/pkglog"
	"github.com/shandysiswandi/gosend/internal/pkg/pkguid"
	"github.com/spf13/cobra"
)

// Version is set with -ldflags "-X main.Version=<tag>".
//
//nolint:gochecknoglobals // injected by the linker
var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "gosend",
		Short:         "Token and serial issuer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Config file path (default /config/config.yaml, ./config/config.yaml when LOCAL=true)")

	// serve
	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Start the HTTP issuer",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")

			application := app.New(path) // Initialize the application
			wait := application.Start()  // Start the application and wait for the termination signal
			<-wait                       // Wait for the application to receive a termination signal

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			application.Stop(ctx) // Stop the application gracefully

			return nil
		},
	}
	rootCmd.AddCommand(serveCmd)

	// token
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Print new tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")
			format, _ := cmd.Flags().GetString("format")

			cfg, err := loadCLIConfig(cmd)
			if err != nil {
				return err
			}
			defer cfg.Close()

			render, err := tokenFormatter(format)
			if err != nil {
				return err
			}

			frame, fp := app.NewIdentity(cfg)
			uc := usecase.New(usecase.Dependency{Tokens: pkguid.NewEncoder(frame, fp)})

			result, err := uc.NextTokens(cmd.Context(), count)
			if err != nil {
				return err
			}
			for _, tok := range result.Tokens {
				fmt.Fprintln(cmd.OutOrStdout(), render(tok))
			}

			return nil
		},
	}
	tokenCmd.Flags().Int("count", 1, "Number of tokens (1-1000)")
	tokenCmd.Flags().String("format", "dec", "Output format: dec|hex|base58")
	rootCmd.AddCommand(tokenCmd)

	// serial
	serialCmd := &cobra.Command{
		Use:   "serial <kind>",
		Short: "Print new serials of one kind (time|ticket|uuid3|uuid4|uuid5|random62|counter)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, _ := cmd.Flags().GetString("data")
			count, _ := cmd.Flags().GetInt("count")
			withToken, _ := cmd.Flags().GetBool("with-token")

			cfg, err := loadCLIConfig(cmd)
			if err != nil {
				return err
			}
			defer cfg.Close()

			ledger, err := store.Open(cfg.GetString("ledger.driver"), store.PebbleOptions{
				Dir:  cfg.GetString("ledger.path"),
				Sync: cfg.GetBool("ledger.sync"),
			}, 0)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer ledger.Close()

			frame, fp := app.NewIdentity(cfg)
			strategies, err := issuer.NewStrategies(cfg, ledger, frame, fp)
			if err != nil {
				return err
			}

			uc := usecase.New(usecase.Dependency{
				Tokens:     pkguid.NewEncoder(frame, fp),
				Strategies: strategies,
				Timeout:    cfg.GetDuration("serial.timeout"),
				Parallel:   int(cfg.GetInt("goroutine.max")),
			})

			result, err := uc.IssueSerials(cmd.Context(), usecase.SerialInput{
				Kind:      args[0],
				Data:      []byte(data),
				WithToken: withToken,
				Count:     count,
			})
			if err != nil {
				return err
			}
			for _, s := range result.Serials {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}

			return nil
		},
	}
	serialCmd.Flags().String("data", "", "Bytes fed to the serializer, as text")
	serialCmd.Flags().Int("count", 1, "Number of serials (1-100)")
	serialCmd.Flags().Bool("with-token", true, "Feed a fresh token before the data")
	rootCmd.AddCommand(serialCmd)

	// version
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and build seed status",
		Run: func(cmd *cobra.Command, args []string) {
			_, fromBuild := pkguid.BuildSeed()
			fmt.Fprintf(cmd.OutOrStdout(), "gosend %s (build seed: %t)\n", Version, fromBuild)
		},
	}
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for rejected input, 1 otherwise.
func exitCode(err error) int {
	switch pkgerror.CodeOf(err) {
	case pkgerror.CodeInvalidInput, pkgerror.CodeInvalidFormat, pkgerror.CodeNotFound:
		return 2
	default:
		return 1
	}
}

// loadCLIConfig logs to stderr so stdout carries only results. Without
// --config it uses the built-in defaults and the environment.
func loadCLIConfig(cmd *cobra.Command) (pkgconfig.Config, error) {
	pkglog.InitLoggingTo(os.Stderr)

	path, _ := cmd.Flags().GetString("config")
	cfg, err := pkgconfig.NewViper(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	pkglog.SetLevel(cfg.GetString("log.level"))

	return cfg, nil
}

func tokenFormatter(format string) (func(pkguid.Token) string, error) {
	switch format {
	case "", "dec":
		return pkguid.Token.String, nil
	case "hex":
		return func(t pkguid.Token) string { return strconv.FormatUint(t.Uint64(), 16) }, nil
	case "base58":
		return func(t pkguid.Token) string {
			b := t.Bytes()
			return base58.Encode(b[:])
		}, nil
	default:
		return nil, fmt.Errorf("invalid --format %q; use dec|hex|base58", format)
	}
}
