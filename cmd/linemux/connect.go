// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/cocowh/linemux/core/charset"
	"github.com/cocowh/linemux/core/console"
	"github.com/cocowh/linemux/core/event"
	"github.com/cocowh/linemux/core/tcp"
	"github.com/cocowh/linemux/pkg/logger"
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect [host] [port]",
	Short: "Bridge the terminal to a linemux server",
	Long: `Connect to a server and exchange lines with it: every line typed is sent,
every line received is printed. Host and port default to client.host and
client.port from the configuration.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConnect,
}

func runConnect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	host, port := cfg.Client.Host, cfg.Client.Port
	if len(args) > 0 {
		host = args[0]
	}
	if len(args) > 1 {
		if port, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("invalid port %q: %w", args[1], err)
		}
	}
	csName := cfg.Client.Charset
	if name, _ := cmd.Flags().GetString("charset"); name != "" {
		csName = name
	}
	cs, err := charset.Lookup(csName)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	term := console.New(cmd.InOrStdin(), cmd.OutOrStdout())
	conn, err := tcp.DialContext(ctx, host, port,
		tcp.WithConnectTimeout(cfg.Client.ConnectTimeout()),
		tcp.WithReadTimeout(cfg.Client.ReadTimeout()),
		tcp.WithCharset(cs),
		tcp.WithReceiveHandler(func(e *event.MessageReceiveEvent) {
			if err := term.Send(e.Message()); err != nil {
				logger.Warnf("print received line: %v", err)
			}
		}),
		tcp.WithDisconnectHandler(func(e *event.DisconnectEvent) {
			_ = term.Sendf("* disconnected: %s", e.Cause())
			cancel()
		}),
	)
	if err != nil {
		return err
	}
	defer conn.Close()

	term.SetInputHandler(func(_ *console.Console, line string) {
		if err := conn.Send(line); err != nil {
			logger.Errorf("send to %s: %v", conn.RemoteAddr(), err)
			cancel()
		}
	})

	if err := term.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
