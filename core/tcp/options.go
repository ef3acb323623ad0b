// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tcp

import (
	"time"

	"github.com/cocowh/linemux/core/charset"
	"github.com/cocowh/linemux/core/event"
	"github.com/cocowh/linemux/core/observability"
)

type options struct {
	connectTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	maxLineLength  int
	charset        *charset.Charset
	metrics        *observability.Metrics

	onConnect    event.Handler[*event.ConnectEvent]
	onReceive    event.Handler[*event.MessageReceiveEvent]
	onSend       event.Handler[*event.MessageSendEvent]
	onDisconnect event.Handler[*event.DisconnectEvent]
}

// Option configures a connection created by Dial or NewConn.
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{
		connectTimeout: 5 * time.Second,
		charset:        charset.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithConnectTimeout bounds how long Dial waits for the TCP handshake.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.connectTimeout = timeout
	}
}

// WithReadTimeout tears the connection down with CauseTimeout when no line
// arrives within timeout. Zero disables it.
func WithReadTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.readTimeout = timeout
	}
}

func WithWriteTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.writeTimeout = timeout
	}
}

func WithMaxLineLength(n int) Option {
	return func(o *options) {
		o.maxLineLength = n
	}
}

func WithCharset(cs *charset.Charset) Option {
	return func(o *options) {
		if cs != nil {
			o.charset = cs
		}
	}
}

func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithConnectHandler installs the on-connect handler before the connect
// event is raised, so it observes that event.
func WithConnectHandler(h event.Handler[*event.ConnectEvent]) Option {
	return func(o *options) {
		o.onConnect = h
	}
}

func WithReceiveHandler(h event.Handler[*event.MessageReceiveEvent]) Option {
	return func(o *options) {
		o.onReceive = h
	}
}

func WithSendHandler(h event.Handler[*event.MessageSendEvent]) Option {
	return func(o *options) {
		o.onSend = h
	}
}

func WithDisconnectHandler(h event.Handler[*event.DisconnectEvent]) Option {
	return func(o *options) {
		o.onDisconnect = h
	}
}
