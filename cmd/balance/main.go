// Command balance computes a crane move plan that balances a ship manifest.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/pdrpinto/balance/internal/app"
	"github.com/pdrpinto/balance/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// main is the entrypoint for the balance command.
func main() {
	// Use a minimal logger until the session one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdin, os.Stdout, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the command so tests can drive it with their own streams.
func run(in io.Reader, out io.Writer, args []string) error {
	cmd := newRootCmd(in, out)
	cmd.SetArgs(args)
	return cmd.Execute()
}

type flags struct {
	config      string
	timeLimit   time.Duration
	outputDir   string
	datasetDir  string
	logLevel    string
	logFormat   string
	transcript  string
	planOut     string
	metricsFile string
	color       string
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "balance [manifest]",
		Short: "Balance a ship manifest with the fewest crane minutes found in time",
		Long: `balance reads a ship manifest, searches for a sequence of crane moves that
brings the port and ship sides within tolerance, prints the plan and writes the
outbound manifest. Bare file names are looked up in the dataset directory.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return &ExitError{Code: 2, Message: err.Error()}
			}

			var name string
			if len(args) == 1 {
				name = args[0]
			} else if name, err = promptManifest(in, out); err != nil {
				return &ExitError{Code: 2, Message: err.Error()}
			}

			a, err := app.New(cfg, out)
			if err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			_, err = a.Run(ctx, name)
			switch {
			case err == nil:
				return nil
			case errors.Is(err, app.ErrManifestNotFound):
				return &ExitError{Code: 2, Message: "Error: " + err.Error()}
			case errors.Is(err, app.ErrNoSolution):
				return &ExitError{Code: 3, Message: err.Error()}
			default:
				return err
			}
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetContext(context.Background())

	fs := cmd.Flags()
	fs.StringVarP(&f.config, "config", "c", "", "configuration file (.yaml, .yml or .hcl)")
	fs.DurationVar(&f.timeLimit, "time-limit", 0, "search wall-clock budget (default 3m0s)")
	fs.StringVar(&f.outputDir, "output-dir", "", "directory for outbound manifests")
	fs.StringVar(&f.datasetDir, "dataset-dir", "", "directory bare manifest names resolve into")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text or json")
	fs.StringVar(&f.transcript, "transcript", "", "also append the session log to this file")
	fs.StringVar(&f.planOut, "plan-out", "", "export the plan as JSON (.zst to compress)")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write search metrics in Prometheus text format")
	fs.StringVar(&f.color, "color", "", "color the grid: auto, always or never")
	return cmd
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return cfg, err
	}
	fs := cmd.Flags()
	if fs.Changed("time-limit") {
		cfg.SetLimit(f.timeLimit)
	}
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("output-dir", &cfg.OutputDir, f.outputDir)
	set("dataset-dir", &cfg.DatasetDir, f.datasetDir)
	set("log-level", &cfg.LogLevel, f.logLevel)
	set("log-format", &cfg.LogFormat, f.logFormat)
	set("transcript", &cfg.Transcript, f.transcript)
	set("plan-out", &cfg.PlanOut, f.planOut)
	set("metrics-file", &cfg.MetricsFile, f.metricsFile)
	set("color", &cfg.Color, f.color)
	return cfg, cfg.Validate()
}

const promptTitle = "Enter the manifest filename (e.g., ShipCase5.csv)"

// promptManifest asks for the manifest name. A terminal gets an input form,
// anything else is read as one line.
func promptManifest(in io.Reader, out io.Writer) (string, error) {
	var name string
	if f, ok := in.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		err := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title(promptTitle).
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("a manifest filename is required")
					}
					return nil
				}),
		)).WithInput(in).WithOutput(out).Run()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(name), nil
	}

	fmt.Fprint(out, promptTitle+": ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	name = strings.TrimSpace(line)
	if name == "" {
		return "", errors.New("no manifest filename given")
	}
	return name, nil
}
