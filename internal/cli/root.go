package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/harun/vaslog/internal/config"
	"github.com/harun/vaslog/internal/logger"
	"github.com/harun/vaslog/internal/metrics"
)

const version = "0.1.0"

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vaslog",
	Short: "vaslog - process log facility",
	Long: `vaslog appends formatted records to a process log target: a file,
stderr, stdout or the local syslog daemon. It can rotate, redact and
reopen file targets and exposes Prometheus metrics about its sessions.`,
	Version:      version,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vaslog/vaslog.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "diagnostics log level (debug, info, warn, error)")

	// Version template
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
}

// GetRootCmd returns the root command for testing
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}

// loadConfig loads the config file and applies the global flags and
// target override on top of it.
func loadConfig(cmd *cobra.Command, target string) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		cfg.Diagnostics.Level = logLevel
	}
	if target != "" {
		cfg.Logging.Target = target
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newLogger builds the diagnostics stream on the command's stderr and a
// Logger configured from cfg.
func newLogger(cmd *cobra.Command, cfg *config.Config, m *metrics.Metrics) (*logger.Logger, zerolog.Logger, error) {
	dc := cfg.Diagnostics.DiagConfig()
	dc.Out = cmd.ErrOrStderr()
	diag := logger.NewDiagnostics(dc)

	l, err := logger.New(cfg.Logging.LoggerConfig(),
		logger.WithDiagnostics(diag.With().Str("component", "vaslog").Logger()),
		logger.WithMetrics(m),
	)
	if err != nil {
		return nil, diag, fmt.Errorf("failed to create logger: %w", err)
	}

	return l, diag, nil
}
