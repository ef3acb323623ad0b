// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package event defines the cancelable connection lifecycle events and the
// two-tier dispatch shared by all of them.
package event

import (
	"sync/atomic"

	"github.com/cocowh/linemux/core/iface"
)

type Event interface {
	Connection() iface.Connection
	IsCancelled() bool
	SetCancelled(cancelled bool)
	// Abortive reports whether cancellation stops later dispatch tiers.
	Abortive() bool
}

// Handler receives one event. Handlers run on the goroutine that produced the
// event.
type Handler[E Event] func(e E)

type base struct {
	conn      iface.Connection
	cancelled atomic.Bool
}

func (b *base) Connection() iface.Connection {
	return b.conn
}

func (b *base) IsCancelled() bool {
	return b.cancelled.Load()
}

func (b *base) SetCancelled(cancelled bool) {
	b.cancelled.Store(cancelled)
}

// Cancel is shorthand for SetCancelled(true).
func (b *base) Cancel() {
	b.cancelled.Store(true)
}

// ConnectEvent is raised once when a connection is established. It is
// observational: cancelling it does not stop the server tier.
type ConnectEvent struct {
	base
}

func NewConnectEvent(conn iface.Connection) *ConnectEvent {
	return &ConnectEvent{base: base{conn: conn}}
}

func (e *ConnectEvent) Abortive() bool { return false }

// MessageReceiveEvent carries one line read from the connection.
type MessageReceiveEvent struct {
	base
	message string
}

func NewMessageReceiveEvent(conn iface.Connection, message string) *MessageReceiveEvent {
	return &MessageReceiveEvent{base: base{conn: conn}, message: message}
}

func (e *MessageReceiveEvent) Abortive() bool { return true }

func (e *MessageReceiveEvent) Message() string {
	return e.message
}

// SetMessage changes the text seen by later tiers.
func (e *MessageReceiveEvent) SetMessage(message string) {
	e.message = message
}

// MessageSendEvent is raised before a line is written. Cancelling it
// suppresses the write; the text written is the event's message after all
// tiers ran.
type MessageSendEvent struct {
	base
	message string
}

func NewMessageSendEvent(conn iface.Connection, message string) *MessageSendEvent {
	return &MessageSendEvent{base: base{conn: conn}, message: message}
}

func (e *MessageSendEvent) Abortive() bool { return true }

func (e *MessageSendEvent) Message() string {
	return e.message
}

func (e *MessageSendEvent) SetMessage(message string) {
	e.message = message
}

// DisconnectEvent is raised exactly once per connection, after the socket
// has been closed.
type DisconnectEvent struct {
	base
	cause DisconnectCause
}

func NewDisconnectEvent(conn iface.Connection, cause DisconnectCause) *DisconnectEvent {
	return &DisconnectEvent{base: base{conn: conn}, cause: cause}
}

func (e *DisconnectEvent) Abortive() bool { return false }

func (e *DisconnectEvent) Cause() DisconnectCause {
	return e.cause
}
