// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/cocowh/linemux/core/config"
	"github.com/cocowh/linemux/pkg/logger"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	configPath string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "linemux",
	Short: "linemux is a line-oriented TCP messaging server and client",
	Long: `linemux moves newline-delimited text over TCP. Every connection raises
connect, receive, send and disconnect events that can be observed or
cancelled, and text is encoded in a per-connection charset.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of linemux",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "linemux version %s\n", rootCmd.Version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "linemux.yaml", "path to configuration file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "override log level (trace, debug, info, warn, error, fatal)")

	serveCmd.Flags().StringP("address", "a", "", "listen address, overrides server.address")
	serveCmd.Flags().Bool("metrics", false, "expose Prometheus metrics, overrides metrics.enabled")
	connectCmd.Flags().String("charset", "", "charset used on the wire, overrides client.charset")
}

// loadConfig reads the configuration and installs the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		if _, err := logger.ParseLevel(logLevel); err != nil {
			return nil, err
		}
		cfg.Logger.Level = logLevel
	}
	if err := logger.InitDefaultLogger(cfg.Logger.LoggerOptions()); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, nil
}

func main() {
	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
