// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/cocowh/linemux/core/charset"
	"github.com/cocowh/linemux/core/config"
	"github.com/cocowh/linemux/core/event"
	"github.com/cocowh/linemux/core/observability"
	"github.com/cocowh/linemux/core/tcp"
	"github.com/cocowh/linemux/core/utils"
	"github.com/cocowh/linemux/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a chat relay that forwards every line to the other clients",
	RunE:  runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("address"); addr != "" {
		cfg.Server.Address = addr
	}
	if cmd.Flags().Changed("metrics") {
		cfg.Metrics.Enabled, _ = cmd.Flags().GetBool("metrics")
	}

	opts, err := serverOptions(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.Metrics != nil {
		go func() {
			if err := opts.Metrics.Serve(ctx, cfg.Metrics.Address); err != nil {
				logger.Errorf("metrics endpoint stopped: %v", err)
			}
		}()
	}

	server := tcp.NewServer("tcp", cfg.Server.Address, opts)
	relay(server)
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Infof("linemux %s serving on %s", version, server.Addr())

	<-ctx.Done()
	logger.Info("Shutting down linemux server...")
	if err := server.Stop(); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
		return err
	}
	logger.Info("linemux server stopped gracefully")
	return nil
}

func serverOptions(cfg *config.Config) (*tcp.ServerOptions, error) {
	cs, err := charset.Lookup(cfg.Server.Charset)
	if err != nil {
		return nil, err
	}
	opts := tcp.NewServerOptions()
	opts.ReadTimeout = cfg.Server.ReadTimeout()
	opts.WriteTimeout = cfg.Server.WriteTimeout()
	opts.MaxLineLength = cfg.Server.MaxLineLength
	opts.MaxConnections = cfg.Server.MaxConnections
	opts.BroadcastWorkers = cfg.Server.BroadcastWorkers
	opts.Charset = cs
	if cfg.Metrics.Enabled {
		opts.Metrics = observability.NewMetrics(cfg.Metrics.Namespace)
	}
	return opts, nil
}

// relay installs server-wide handlers that turn the server into a chat room.
func relay(server *tcp.Server) {
	server.SetConnectHandler(func(e *event.ConnectEvent) {
		c := tcp.From(e)
		online := server.Len()
		// announced off the accept goroutine so a slow peer cannot stall accepts
		go func() {
			defer utils.PanicHandler(nil)
			err := multierr.Append(
				c.Send(fmt.Sprintf("* welcome %s, %d online", c.ID(), online)),
				server.BroadcastExcept(fmt.Sprintf("* %s joined", c.ID()), c),
			)
			if err != nil {
				logger.Warnf("announce join of %s: %v", c.ID(), err)
			}
		}()
	})
	server.SetReceiveHandler(func(e *event.MessageReceiveEvent) {
		c := tcp.From(e)
		if err := server.BroadcastExcept(fmt.Sprintf("%s: %s", c.ID(), e.Message()), c); err != nil {
			logger.Warnf("relay from %s: %v", c.ID(), err)
		}
	})
	server.SetDisconnectHandler(func(e *event.DisconnectEvent) {
		c := tcp.From(e)
		if err := server.BroadcastExcept(fmt.Sprintf("* %s left (%s)", c.ID(), e.Cause()), c); err != nil {
			logger.Warnf("announce leave of %s: %v", c.ID(), err)
		}
	})
}
