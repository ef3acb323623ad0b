// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iface

import (
	"context"
	"net"
	"time"
)

// Connection is one live line-oriented channel bound to a socket.
type Connection interface {
	Sender
	ID() string
	RemoteAddr() net.Addr
	LocalAddr() net.Addr
	ReadTimeout() time.Duration
	SetReadTimeout(timeout time.Duration)
	IsClosed() bool
	Close() error
	Context() context.Context
}
