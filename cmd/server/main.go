package main

import (
	"fmt"
	"io"
	"os"

	"github.com/openfoodfacts-mcp/backend/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "offmcp",
	Short: "Open Food Facts MCP server",
	Long: `An MCP server exposing the Open Food Facts product database, Open Prices
and Robotoff as tools, resources and prompts. Serves over streamable HTTP by
default, or over stdio with --transport=stdio.`,
	SilenceUsage:      true,
	PersistentPreRunE: persistentPreRun,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ./config/config.yaml)")

	// Bare invocation serves
	rootCmd.RunE = runServe
	rootCmd.Flags().StringVar(&transportFlag, "transport", "", "transport to serve: stdio or http (overrides config)")
	rootCmd.Flags().IntVar(&portFlag, "port", 0, "HTTP listen port (overrides config)")

	rootCmd.AddCommand(serveCmd, toolsCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// persistentPreRun loads configuration and the logger before each command
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "version" {
		return nil
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err = initLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	return nil
}

// initLogger builds the process logger. Output goes to stderr or to the
// configured file; stdout is reserved for the stdio transport.
func initLogger(cfg config.LoggingConfig) (*zerolog.Logger, error) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var sink io.Writer = os.Stderr
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", cfg.File, err)
		}
		sink = f
	}

	var output io.Writer = sink
	if cfg.Format != "json" {
		output = zerolog.ConsoleWriter{Out: sink, NoColor: cfg.File != ""}
	}

	log := zerolog.New(output).Level(level).With().Timestamp().Str("service", "offmcp").Logger()
	return &log, nil
}
