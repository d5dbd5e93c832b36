package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/harun/vaslog/internal/logger"
)

var writeTarget string

var writeCmd = &cobra.Command{
	Use:   "write [message...]",
	Short: "Append one record to the log target",
	Long: `Open the configured log target, append the arguments joined by
spaces as a single record and close the target again.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWrite,
}

func init() {
	writeCmd.Flags().StringVarP(&writeTarget, "target", "t", "", "log target (file path, stderr, stdout, syslog, none)")
	rootCmd.AddCommand(writeCmd)
}

func runWrite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, writeTarget)
	if err != nil {
		return err
	}

	l, _, err := newLogger(cmd, cfg, nil)
	if err != nil {
		return err
	}

	logger.SetDefault(l)
	defer logger.SetDefault(nil)

	if err := logger.Init(cfg.Logging.Target); err != nil {
		return err
	}

	logger.Writef("%s", strings.Join(args, " "))

	return logger.Close()
}
