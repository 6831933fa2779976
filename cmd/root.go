package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/swd-probe/probe-tools/internal/config"
	"github.com/swd-probe/probe-tools/pkg/log"
)

var (
	configPath string
	logLevel   string
	logFile    string

	// cfg is the configuration loaded before any subcommand runs.
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "probe-tools",
	Short: "Build and test helpers for the debug probe firmware",
	Long: `probe-tools embeds target programs into the probe firmware as C sources
and smoke-tests the probe's GDB server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(configPath, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			c.Logging.Level = logLevel
		}
		if cmd.Flags().Changed("log-file") {
			c.Logging.Path = logFile
		}
		config.ApplyDefaults(c)
		cfg = c
		return log.Init(c.Logging.Path, c.Logging.Level)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	c, err := rootCmd.ExecuteC()
	if err != nil {
		printError(c.Name(), err.Error())
		os.Exit(1)
	}
}

// finish logs a failed subcommand and closes the log file. Every RunE returns
// through it, so the log is flushed before Execute exits.
func finish(command string, err error) error {
	if err != nil {
		slog.Error("command failed", "command", command, "err", err)
	}
	log.Close()
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
}

// loadConfig reads the configuration file. The default file is optional,
// one named explicitly with --config is not.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	return config.Load(path, !explicit)
}
