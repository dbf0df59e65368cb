// Package cmd implements the nunitius command-line surface: a server
// subcommand running the hub, and two TUI clients (send, view) speaking
// the typed sender/viewer protocols against it.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	viperlib "github.com/spf13/viper"

	"github.com/arzg/nunitius/internal/config"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE any
	// Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	cfg       config.Config
	debugFlag bool

	viper = viperlib.New()
)

var rootCmd = &cobra.Command{
	Use:     "nunitius",
	Short:   "A terminal-native broadcast chat system",
	Long:    "Nunitius is a terminal-native broadcast chat system: one server hub, many senders, many read-only viewers.",
	Version: version,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/nunitius/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"enable debug logging (also: NUNITIUS_DEBUG=1)")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(viewCmd)
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("listen_addr", defaults.ListenAddr)
	viper.SetDefault("debug", defaults.Debug)
	viper.SetDefault("channel_capacity", defaults.ChannelCapacity)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if _, err := os.Stat(".nunitius/config.yaml"); err == nil {
			viper.SetConfigFile(".nunitius/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "nunitius"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	viper.SetEnvPrefix("NUNITIUS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viperlib.ConfigFileNotFoundError
		if errors.As(err, &configNotFound) {
			defaultPath := ".nunitius/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func isDebug() bool {
	return debugFlag || os.Getenv("NUNITIUS_DEBUG") != "" || cfg.Debug
}

func configFilePathForWatcher() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return ".nunitius/config.yaml"
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var errMissingAddr = fmt.Errorf("no server address given: pass --addr or set listen_addr in the config file")
