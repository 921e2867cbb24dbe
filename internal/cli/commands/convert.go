package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mjlog/mjconv/pkg/config"
	"github.com/mjlog/mjconv/pkg/converter"
	"github.com/mjlog/mjconv/pkg/logger"
	"github.com/mjlog/mjconv/pkg/mjai"
	"github.com/mjlog/mjconv/pkg/output"
	"github.com/mjlog/mjconv/pkg/tenhou"
	"github.com/mjlog/mjconv/pkg/webhook"
)

// ExitCode is set by commands that finish without an error but still want a
// non-zero exit status.
var ExitCode = 0

// UsageError marks an invocation with the wrong arguments.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// ConvertOptions holds command-line options for the convert command.
type ConvertOptions struct {
	ConfigFile string
	Output     string
	Verbose    bool
	Quiet      bool

	// Overrides for the config file and environment.
	WriteMode string
	LogLevel  string
	LogJSON   bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewConvertCommand creates the command that converts a directory of
// tenhou.net/6 logs. It is installed as the root command.
func NewConvertCommand() *cobra.Command {
	opts := &ConvertOptions{}

	cmd := &cobra.Command{
		Use:   "mjconv <input_directory> <output_directory>",
		Short: "Convert tenhou.net/6 game logs to mjai events",
		Long: `Convert every tenhou.net/6 game log in a directory to mjai events.

Each file directly inside input_directory with a .json or .txt extension (or
no extension) is converted to output_directory/<name>.json, one mjai event per
line. Subdirectories are not visited. The output directory is created if it
does not exist. A file that fails to convert is reported and the remaining
files are still converted.

Exit codes:
  0 - All files converted
  1 - One or more files failed to convert
  2 - Usage, configuration or directory error`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Summary format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "List every file in the summary, not just failures")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary line only")

	cmd.Flags().StringVar(&opts.WriteMode, "write-mode", "", "How output files are written (atomic|truncate)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.Flags().BoolVar(&opts.LogJSON, "log-json", false, "Write logs as JSON")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_failures", "When to fire webhook (on_failures|always|never)")

	return cmd
}

// exactArgs is cobra.ExactArgs returning a *UsageError.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return &UsageError{Err: fmt.Errorf("accepts %d arg(s), received %d", n, len(args))}
		}
		return nil
	}
}

func runConvert(cmd *cobra.Command, args []string, opts *ConvertOptions) error {
	inputDir, outputDir := args[0], args[1]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx, cmd, opts)
	if err != nil {
		return err
	}

	webhooks, err := collectWebhooks(cfg, opts)
	if err != nil {
		return err
	}

	formatter, err := createFormatter(opts)
	if err != nil {
		return err
	}

	log := newLogger(cfg, cmd.ErrOrStderr())
	ctx = logger.ContextWithLogger(ctx, log)

	batch, err := newBatch(cfg, log)
	if err != nil {
		return err
	}

	result, err := batch.ConvertDirectory(ctx, inputDir, outputDir)
	if result == nil {
		return err
	}

	report := output.NewReport(result, inputDir, outputDir, opts.ConfigFile)
	if ferr := formatter.Format(ctx, report, cmd.OutOrStdout()); ferr != nil {
		return fmt.Errorf("formatting output: %w", ferr)
	}

	// Webhook failures are reported but never change the exit status.
	sendWebhooks(ctx, webhooks, report, cmd.ErrOrStderr())

	return err
}

// loadConfig loads the config file and environment, then applies flags that
// were set explicitly.
func loadConfig(ctx context.Context, cmd *cobra.Command, opts *ConvertOptions) (*config.Config, error) {
	cfg, err := config.Load(ctx, opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("write-mode") {
		mode, err := converter.ParseWriteMode(opts.WriteMode)
		if err != nil {
			return nil, fmt.Errorf("--write-mode: %w", err)
		}
		cfg.WriteMode = string(mode)
	}
	if flags.Changed("log-level") {
		level, err := logger.ParseLevel(opts.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("--log-level: %w", err)
		}
		cfg.Log.Level = string(level)
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = opts.LogJSON
	}

	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) logger.Logger {
	lc := logger.DefaultConfig()
	lc.Level = logger.LogLevel(cfg.Log.Level)
	lc.JSON = cfg.Log.JSON
	lc.Output = w
	return logger.New(lc)
}

// newConverter builds the tenhou.net/6 to mjai file converter.
func newConverter(cfg *config.Config, log logger.Logger) (*converter.Converter[*tenhou.Log, mjai.Event], error) {
	codec, err := tenhou.NewCodec(tenhou.WithVersionConstraint(cfg.VersionConstraint))
	if err != nil {
		return nil, fmt.Errorf("creating codec: %w", err)
	}

	mode, err := converter.ParseWriteMode(cfg.WriteMode)
	if err != nil {
		return nil, err
	}

	return converter.NewConverter[*tenhou.Log, mjai.Event](codec,
		converter.WithLogger(log),
		converter.WithWriteMode(mode),
	), nil
}

func newBatch(cfg *config.Config, log logger.Logger) (*converter.Batch, error) {
	conv, err := newConverter(cfg, log)
	if err != nil {
		return nil, err
	}
	return converter.NewBatch(conv, converter.WithLogger(log)), nil
}

func createFormatter(opts *ConvertOptions) (output.Formatter, error) {
	return output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
}

// sendWebhooks sends the report to every webhook whose trigger matches.
// Results are written to w.
func sendWebhooks(ctx context.Context, webhooks []config.WebhookConfig, report *output.Report, w io.Writer) {
	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient()

	for _, wh := range webhooks {
		if !wh.ShouldFire(report.HasFailures()) {
			continue
		}

		resp := client.Send(ctx, report, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
			Retries: wh.RetryCount(),
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			_, _ = fmt.Fprintf(w, "Webhook %s: sent (%d, %s)\n", name, resp.StatusCode, resp.Duration)
		} else {
			_, _ = fmt.Fprintf(w, "Webhook %s: failed after %d attempt(s) (%v)\n", name, resp.Attempts, resp.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with the one given by flags.
func collectWebhooks(cfg *config.Config, opts *ConvertOptions) ([]config.WebhookConfig, error) {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		wh := config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: config.WebhookTrigger(opts.WebhookTrigger),
		}
		if err := config.ValidateWebhook(&wh); err != nil {
			return nil, fmt.Errorf("--webhook-url: %w", err)
		}
		webhooks = append(webhooks, wh)
	}

	return webhooks, nil
}
