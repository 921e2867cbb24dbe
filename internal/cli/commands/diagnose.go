package commands

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mjlog/mjconv/pkg/config"
	"github.com/mjlog/mjconv/pkg/converter"
	"github.com/mjlog/mjconv/pkg/detector"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	ConfigFile string
	Verbose    bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <input_directory> [output_directory]",
		Short: "Diagnose common problems before a conversion",
		Long: `Diagnose common problems before running a conversion.

This command checks:
- Config file syntax and structure (with --config)
- Input directory existence and the files that would be converted
- The record format of every eligible file
- Output directory accessibility
- Webhook configuration

Nothing is written.

Example:
  mjconv diagnose logs/
  mjconv diagnose -v --config mjconv.yaml logs/ converted/`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputDir := ""
			if len(args) > 1 {
				outputDir = args[1]
			}
			return runDiagnose(cmd.Context(), cmd.OutOrStdout(), args[0], outputDir, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, inputDir, outputDir string, opts *DiagnoseOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	results := []DiagnosticResult{}

	// 1. Config file
	cfg, result := checkConfig(ctx, opts.ConfigFile)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 2. Input directory and eligible files
	files, dirResult := checkInputDir(inputDir)
	results = append(results, dirResult)

	// 3. Record format of each file
	results = append(results, checkFormats(ctx, files, opts)...)

	// 4. Output directory
	if outputDir != "" {
		results = append(results, checkOutputDir(outputDir))
	}

	// 5. Webhooks
	results = append(results, checkWebhooks(cfg, opts)...)

	printDiagnostics(w, results, opts)
	return nil
}

func checkConfig(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config",
	}

	if path == "" {
		cfg, err := config.Load(ctx, "")
		if err != nil {
			result.Status = "error"
			result.Message = fmt.Sprintf("Invalid environment configuration: %v", err)
			result.Suggests = []string{"Check the MJCONV_* environment variables"}
			return nil, result
		}
		result.Status = "ok"
		result.Message = "No config file, using defaults and environment"
		result.Details = configDetails(cfg)
		return cfg, result
	}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		result.Status = "error"
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{"Check the file path is correct"}
		return nil, result
	case err != nil:
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return nil, result
	case info.IsDir():
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return nil, result
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		return nil, result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Loaded %s", path)
	result.Details = configDetails(cfg)
	return cfg, result
}

func configDetails(cfg *config.Config) []string {
	constraint := cfg.VersionConstraint
	if constraint == "" {
		constraint = "(none)"
	}
	return []string{
		fmt.Sprintf("Write mode: %s", cfg.WriteMode),
		fmt.Sprintf("Version constraint: %s", constraint),
		fmt.Sprintf("Log level: %s", cfg.Log.Level),
	}
}

// checkInputDir returns the eligible files directly inside dir.
func checkInputDir(dir string) ([]string, DiagnosticResult) {
	result := DiagnosticResult{
		Check: fmt.Sprintf("Input Directory: %s", dir),
	}

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		result.Status = "error"
		result.Message = "Directory does not exist"
		result.Suggests = []string{"Check the input directory path is correct"}
		return nil, result
	case err != nil:
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access directory: %v", err)
		result.Suggests = []string{"Check directory permissions"}
		return nil, result
	case !info.IsDir():
		result.Status = "error"
		result.Message = "Path is a file, not a directory"
		result.Suggests = []string{"Pass the directory that contains the file"}
		return nil, result
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot list directory: %v", err)
		return nil, result
	}

	var files []string
	subdirs, ignored := 0, 0
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		// Stat follows symlinks, matching how the batch classifies entries.
		info, statErr := os.Stat(path)
		switch {
		case statErr == nil && info.IsDir():
			subdirs++
		case converter.IsEligible(path):
			files = append(files, path)
		default:
			ignored++
			result.Details = append(result.Details, fmt.Sprintf("ignored: %s", e.Name()))
		}
	}

	if subdirs > 0 {
		result.Details = append(result.Details, fmt.Sprintf("%d subdirectory(s) will be skipped", subdirs))
	}

	if len(files) == 0 {
		result.Status = "warning"
		result.Message = "No .json, .txt or extensionless files to convert"
		return nil, result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("%d file(s) to convert, %d ignored", len(files), ignored)
	return files, result
}

func checkFormats(ctx context.Context, files []string, opts *DiagnoseOptions) []DiagnosticResult {
	if len(files) == 0 {
		return nil
	}

	d := detector.New(detector.WithSampleSize(10))
	result := DiagnosticResult{
		Check: "Record Format",
	}

	bad := 0
	for _, file := range files {
		det, err := d.DetectFromFile(ctx, file)
		name := filepath.Base(file)
		switch {
		case err != nil:
			bad++
			result.Details = append(result.Details, fmt.Sprintf("%s: cannot read (%v)", name, err))
		case det.Format == detector.FormatMjai:
			bad++
			result.Details = append(result.Details, fmt.Sprintf("%s: already mjai events", name))
		case !det.Recognized():
			bad++
			result.Details = append(result.Details, fmt.Sprintf("%s: %s", name, truncate(det.Reason, 80)))
		case opts.Verbose:
			result.Details = append(result.Details, fmt.Sprintf("%s: tenhou.net/6", name))
		}
	}

	if bad > 0 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("%d of %d file(s) are not tenhou.net/6 logs and will fail", bad, len(files))
		result.Suggests = []string{
			"Use 'mjconv detect <file>' for details",
			"Move files that are not game logs out of the input directory",
		}
		return []DiagnosticResult{result}
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("All %d file(s) look like tenhou.net/6 logs", len(files))
	return []DiagnosticResult{result}
}

func checkOutputDir(dir string) DiagnosticResult {
	result := DiagnosticResult{
		Check: fmt.Sprintf("Output Directory: %s", dir),
	}

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		result.Status = "ok"
		result.Message = "Does not exist yet, will be created"
	case err != nil:
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access directory: %v", err)
		result.Suggests = []string{"Check directory permissions"}
	case !info.IsDir():
		result.Status = "error"
		result.Message = "Path exists and is not a directory"
		result.Suggests = []string{"Choose a different output directory"}
	case info.Mode().Perm()&0o200 == 0:
		result.Status = "warning"
		result.Message = "Directory is not writable by its owner"
	default:
		result.Status = "ok"
		result.Message = "Directory exists; outputs with the same names will be overwritten"
	}

	return result
}

func checkWebhooks(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if cfg == nil || len(cfg.Webhooks) == 0 {
		// Webhooks are optional, just note they're not configured
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check: fmt.Sprintf("Webhook: %s", name),
		}

		issues := []string{}
		warnings := []string{}

		if u, err := url.Parse(wh.URL); err == nil && u.Scheme == "http" && u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
			warnings = append(warnings, "URL uses plain http; the bearer token is sent unencrypted")
		}

		if wh.Token == "" && wh.Trigger != config.WebhookTriggerNever {
			warnings = append(warnings, "No token configured")
		}

		if wh.Trigger == config.WebhookTriggerNever {
			issues = append(issues, "Trigger is never; the webhook is configured but disabled")
		}

		if len(issues) > 0 {
			result.Status = "warning"
			result.Message = fmt.Sprintf("%d issue(s)", len(issues))
			result.Details = append(issues, warnings...)
		} else if len(warnings) > 0 {
			result.Status = "warning"
			result.Message = fmt.Sprintf("%d warning(s)", len(warnings))
			result.Details = warnings
		} else {
			result.Status = "ok"
			result.Message = fmt.Sprintf("Trigger: %s", wh.Trigger)
		}

		if opts.Verbose {
			result.Details = append(result.Details,
				fmt.Sprintf("URL: %s", wh.URL),
				fmt.Sprintf("Timeout: %s", wh.Timeout),
				fmt.Sprintf("Retries: %d", wh.RetryCount()),
			)
		}

		results = append(results, result)
	}

	return results
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	_, _ = fmt.Fprintln(w, "=== mjconv Diagnostics ===")
	_, _ = fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		_, _ = fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		_, _ = fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				_, _ = fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			_, _ = fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, "---")
	_, _ = fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		_, _ = fmt.Fprintln(w, "\nFix the errors above before converting.")
	} else if warnCount > 0 {
		_, _ = fmt.Fprintln(w, "\nConversion will run but some files may fail.")
	} else {
		_, _ = fmt.Fprintln(w, "\nReady to convert.")
	}
}

// truncate shortens s to maxLen runes, marking the cut with "...".
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
