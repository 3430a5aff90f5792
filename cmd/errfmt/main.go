package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/chameleon-db/errfmt/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	colorMode  string

	// appConfig is loaded before any subcommand runs.
	appConfig *config.Config
)

// errReported means the command already printed its failure.
var errReported = errors.New("failure already reported")

var rootCmd = &cobra.Command{
	Use:   "errfmt",
	Short: "Format application and database errors for logs",
	Long: `errfmt renders errors, especially PostgreSQL errors, as readable log text.

Database errors get a detail block with constraint, table, field values,
detail text, the failing SQL and the original cause.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		appConfig = cfg

		mode := cfg.Output.Color
		if cmd.Flags().Changed("color") {
			mode = colorMode
		}
		return applyColorMode(mode)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress information")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./"+config.FileName+")")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "highlight output: auto, always or never")
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.NewFileLoader(configPath).LoadOrDefault()
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.NewLoader(workDir).LoadOrDefault()
}

func applyColorMode(mode string) error {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto", "":
	default:
		return fmt.Errorf("invalid color mode %q: use auto, always or never", mode)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			printError("%v", err)
		}
		os.Exit(1)
	}
}
