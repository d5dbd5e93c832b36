package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harun/vaslog/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a configuration file",
	Long: `Check a configuration file against the config schema and the
semantic rules (levels, rotation, schedule, patterns, metrics address).
Without an argument the --config file is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(cfgFile)
	path := loader.GetConfigPath()
	if len(args) == 1 {
		path = args[0]
		loader = config.NewLoader(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	v := config.NewValidator()
	if err := v.ValidateDocument(data); err != nil {
		return err
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	if errs := v.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(cmd.ErrOrStderr(), "  - %v\n", e)
		}
		return fmt.Errorf("%s: %w", path, errors.Join(errs...))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "configuration is valid: %s\n", path)
	return nil
}
