// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tcp

import (
	"context"
	"net"
	"strconv"

	"github.com/cocowh/linemux/core/constant"
	"github.com/cocowh/linemux/pkg/errors"
	"github.com/cocowh/linemux/pkg/logger"
)

// Dial connects to host:port and returns a standalone connection whose read
// loop is already running.
//
// Failures are *errors.MuxError values: errors.Is(err, errors.ErrHostUnreachable)
// holds when the host cannot be resolved or reached, and
// errors.Is(err, errors.ErrConnectionRefused) when nothing listens on port.
// There is no retry.
func Dial(host string, port int, opts ...Option) (*Conn, error) {
	return DialContext(context.Background(), host, port, opts...)
}

func DialContext(ctx context.Context, host string, port int, opts ...Option) (*Conn, error) {
	o := newOptions(opts)
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	dialer := net.Dialer{Timeout: o.connectTimeout}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		logger.Errorf("Failed to connect to %s: %v", addr, err)
		return nil, errors.ConvertNetError(err, constant.ErrMessageConnectFailed).WithContext("addr", addr)
	}

	logger.Infof("Connected to %s successfully", addr)
	return newConn(rawConn, nil, o), nil
}
