// Package commands contains the commands for the uspacy-update CLI.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/uspacy-tools/uspacy-update/internal/cli"
	"github.com/uspacy-tools/uspacy-update/internal/constants"
	"github.com/uspacy-tools/uspacy-update/internal/tabular"
	"github.com/uspacy-tools/uspacy-update/internal/updater"
	"github.com/uspacy-tools/uspacy-update/internal/uspacy"
)

// App represents the application.
type App struct {
	cmd    *cobra.Command
	viper  *viper.Viper
	config appConfig
}

// appConfig holds the configuration for the application.
type appConfig struct {
	Verbosity int

	BaseURL        string        `mapstructure:"base-url"`
	Entity         string        `mapstructure:"entity"`
	File           string        `mapstructure:"file"`
	SearchField    string        `mapstructure:"search-field"`
	WebhookToken   string        `mapstructure:"webhook-token"`
	WebhookHeader  string        `mapstructure:"webhook-header"`
	DryRun         bool          `mapstructure:"dry-run"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
}

// New creates a new App instance with default values.
func New() (*App, error) {
	a := App{}

	a.cmd = &cobra.Command{
		Use:   constants.CmdName + " --base-url URL --entity TYPE --file PATH",
		Short: "Update Uspacy CRM entities from a CSV/XLSX file",
		Long: `Update Uspacy CRM entities from a CSV or XLSX file through the incoming-webhook API.

The first file row must contain field ids as known to Uspacy. The first column
(or the --search-field column) is used to locate each entity; the remaining
columns are applied as a single update per row. List fields are written using
their human-readable labels and translated to the underlying values through the
entity field schema.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Command parsing has been successful. Returns to not print usage anymore.
			a.cmd.SilenceUsage = true
			cli.SetVerbosity(a.config.Verbosity) // Set verbosity before loading config
			if err := cli.InitViperConfig(constants.CmdName, a.cmd, a.viper); err != nil {
				return err
			}
			if err := a.viper.Unmarshal(&a.config); err != nil {
				return fmt.Errorf("unable to strictly decode configuration into struct: %w", err)
			}

			cli.SetVerbosity(a.config.Verbosity)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run()
		},
	}
	a.viper = viper.New()

	if err := installRootCmd(&a); err != nil {
		return nil, err
	}
	cli.InstallConfigFlag(a.cmd)

	if err := a.viper.BindPFlags(a.cmd.PersistentFlags()); err != nil {
		return nil, err
	}

	return &a, nil
}

func installRootCmd(app *App) error {
	cmd := app.cmd

	cmd.PersistentFlags().CountVarP(&app.config.Verbosity, "verbose", "v", "issue INFO (-v), DEBUG (-vv)")

	cmd.PersistentFlags().StringVar(&app.config.BaseURL, "base-url", "", "base URL of the workspace, like https://example.uspacy.ua")
	cmd.PersistentFlags().StringVar(&app.config.Entity, "entity", "", "entity type to update, e.g. companies or contacts")
	cmd.PersistentFlags().StringVar(&app.config.File, "file", "", "path to the CSV/XLSX file (first row is field ids)")
	cmd.PersistentFlags().StringVar(&app.config.SearchField, "search-field", "", "field id used to locate entities (defaults to the first column)")
	cmd.PersistentFlags().StringVar(&app.config.WebhookToken, "webhook-token", "", "webhook token (defaults to env "+constants.WebhookTokenEnv+")")
	cmd.PersistentFlags().StringVar(&app.config.WebhookHeader, "webhook-header", "", "optional header name carrying the token in addition to the URL")
	cmd.PersistentFlags().BoolVar(&app.config.DryRun, "dry-run", false, "go through the motions of an update run, but do not issue any mutating call")
	cmd.PersistentFlags().DurationVar(&app.config.RequestTimeout, "request-timeout", constants.DefaultRequestTimeout, "timeout for each outbound HTTP request")

	if err := cmd.MarkPersistentFlagFilename("file", "csv", "xlsx"); err != nil {
		return fmt.Errorf("failed to mark file flag as filename: %w", err)
	}
	return nil
}

// Run executes the command and its subcommands.
func (a *App) Run() error {
	return a.cmd.Execute()
}

// UsageError returns if the error is a command parsing or usage one.
func (a App) UsageError() bool {
	return !a.cmd.SilenceUsage
}

// sanitize validates the configuration before any network call, filling the
// webhook token from the environment when the flag is unset.
func (c *appConfig) sanitize() error {
	if c.WebhookToken == "" {
		c.WebhookToken = os.Getenv(constants.WebhookTokenEnv)
	}

	var missing []string
	if c.BaseURL == "" {
		missing = append(missing, "--base-url")
	}
	if c.Entity == "" {
		missing = append(missing, "--entity")
	}
	if c.File == "" {
		missing = append(missing, "--file")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required flags not set: %s", strings.Join(missing, ", "))
	}

	if c.WebhookToken == "" {
		return fmt.Errorf("webhook token is required, use --webhook-token or set %s", constants.WebhookTokenEnv)
	}
	return nil
}

func (a *App) run() error {
	if err := a.config.sanitize(); err != nil {
		a.cmd.SilenceUsage = false
		return err
	}

	header, rows, err := tabular.Read(a.config.File)
	if err != nil {
		return err
	}

	searchField, err := resolveSearchField(header, a.config.SearchField)
	if err != nil {
		a.cmd.SilenceUsage = false
		return err
	}

	client, err := uspacy.New(slog.Default(), uspacy.Config{
		BaseURL:    a.config.BaseURL,
		Token:      a.config.WebhookToken,
		AuthHeader: a.config.WebhookHeader,
		Entity:     a.config.Entity,
	}, uspacy.WithHTTPClient(&http.Client{Timeout: a.config.RequestTimeout}))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := a.cmd.OutOrStdout()
	d := updater.New(slog.Default(), client, out, a.config.DryRun)
	report, err := d.Run(ctx, header, rows, searchField)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, report.Summary())
	return nil
}

// resolveSearchField binds the search field: the first header column by
// default, or the requested one when it exists in the header.
func resolveSearchField(header []string, requested string) (string, error) {
	if requested == "" {
		for _, id := range header {
			if id != "" {
				return id, nil
			}
		}
		return "", errors.New("header row has no usable field id")
	}

	for _, id := range header {
		if id == requested {
			return requested, nil
		}
	}
	return "", fmt.Errorf("search field %q not found in header row", requested)
}
