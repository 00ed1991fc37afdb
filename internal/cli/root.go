// Package cli provides the command-line interface for spectra.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/spectra/internal/config"
	"github.com/jmylchreest/spectra/internal/version"
)

// app carries the state shared by the commands of one root command.
type app struct {
	v          *viper.Viper
	configPath string
	verbose    bool
	quiet      bool
	logger     hclog.Logger
}

// NewRootCmd builds the spectra command tree. Each call returns an
// independent tree with its own configuration, so tests can run commands
// side by side.
func NewRootCmd() *cobra.Command {
	a := &app{
		v:      config.New(),
		logger: hclog.NewNullLogger(),
	}

	rootCmd := &cobra.Command{
		Use:   "spectra",
		Short: "Extract colour palettes from images",
		Long: `spectra extracts a small, visually representative palette from an image.

Colours are counted in a perceptual (CIELAB) histogram, scored by a
selectable method and picked so that the result is both characteristic of
the image and perceptually diverse. Output is stable for a given image
and settings.`,
		Version:           version.Short(),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.SetVersionTemplate(version.String() + "\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "configuration file (default: "+config.DefaultPath()+")")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "only log errors")
	flags.String(config.KeyLogLevel, "warn", "log level: trace, debug, info, warn, error, off")
	bindFlags(a.v, flags, config.KeyLogLevel)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newExtractCmd(a))
	rootCmd.AddCommand(newMethodsCmd())
	rootCmd.AddCommand(newConfigCmd(a))

	return rootCmd
}

// Execute runs the root command with a context cancelled on SIGINT or
// SIGTERM. It returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	rootCmd.SetOut(os.Stdout)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

// setup reads the configuration file and configures logging before any
// subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	path, required := a.configPath, true
	if path == "" {
		path, required = config.DefaultPath(), false
	}
	if err := config.ReadFile(a.v, path, required); err != nil {
		return err
	}

	level, err := logLevel(a.v.GetString(config.KeyLogLevel), a.verbose, a.quiet)
	if err != nil {
		return err
	}
	a.logger = newLogger(cmd.ErrOrStderr(), level)
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("loaded configuration", "file", used)
	}
	return nil
}

// logLevel resolves the effective level: --verbose and --quiet win over the
// configured level.
func logLevel(configured string, verbose, quiet bool) (hclog.Level, error) {
	switch {
	case verbose && quiet:
		return hclog.NoLevel, fmt.Errorf("--verbose and --quiet are mutually exclusive")
	case verbose:
		return hclog.Debug, nil
	case quiet:
		return hclog.Error, nil
	}
	level := hclog.LevelFromString(configured)
	if level == hclog.NoLevel {
		return hclog.NoLevel, fmt.Errorf("unknown log level %q", configured)
	}
	return level, nil
}

func newLogger(w io.Writer, level hclog.Level) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "spectra",
		Level:  level,
		Output: w,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// bindFlags binds the named flags to configuration keys of the same name, so
// an explicitly set flag overrides the config file and environment.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys ...string) {
	for _, key := range keys {
		if f := flags.Lookup(key); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}
