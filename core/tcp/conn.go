// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tcp

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/cocowh/linemux/core/charset"
	"github.com/cocowh/linemux/core/constant"
	"github.com/cocowh/linemux/core/event"
	"github.com/cocowh/linemux/core/iface"
	"github.com/cocowh/linemux/core/line"
	"github.com/cocowh/linemux/core/observability"
	"github.com/cocowh/linemux/core/utils"
	muxerrors "github.com/cocowh/linemux/pkg/errors"
	"github.com/cocowh/linemux/pkg/logger"
)

var _ iface.Connection = (*Conn)(nil)

// Conn is a line-oriented connection over one TCP socket. Lines read by its
// read loop are raised as MessageReceiveEvents, first to the connection's own
// handler and then, unless cancelled, to its server's handler.
//
// Conn tears itself down exactly once, whichever of peer close, read
// timeout, read error or Close gets there first. The cause recorded by the
// first of them is the one reported in the DisconnectEvent.
type Conn struct {
	id      string
	rawConn net.Conn
	server  *Server
	codec   *line.Codec
	metrics *observability.Metrics

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	readTimeout  atomic.Int64
	writeTimeout atomic.Int64
	closed       atomic.Bool
	cause        atomic.Int32

	mu           sync.RWMutex
	onConnect    event.Handler[*event.ConnectEvent]
	onReceive    event.Handler[*event.MessageReceiveEvent]
	onSend       event.Handler[*event.MessageSendEvent]
	onDisconnect event.Handler[*event.DisconnectEvent]
}

// NewConn wraps an established socket. The connect event is raised before
// NewConn returns and the read loop is started on its own goroutine.
func NewConn(rawConn net.Conn, opts ...Option) *Conn {
	return newConn(rawConn, nil, newOptions(opts))
}

func newConn(rawConn net.Conn, server *Server, o *options) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Conn{
		id:           uuid.NewString(),
		rawConn:      rawConn,
		server:       server,
		codec:        line.NewCodec(rawConn, rawConn),
		metrics:      o.metrics,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
		onConnect:    o.onConnect,
		onReceive:    o.onReceive,
		onSend:       o.onSend,
		onDisconnect: o.onDisconnect,
	}
	c.codec.SetCharset(o.charset)
	c.codec.SetMaxLineLength(o.maxLineLength)
	c.readTimeout.Store(int64(o.readTimeout))
	c.writeTimeout.Store(int64(o.writeTimeout))

	// Registered before the connect event so a handler that closes the
	// connection removes an entry that exists.
	if server != nil {
		server.add(c)
	}

	event.Dispatch(event.NewConnectEvent(c), c.ConnectHandler(), server.connectHandler())

	if server == nil {
		go c.readLoop()
	}
	return c
}

// From returns the *Conn an event was raised for, or nil if the event does
// not belong to a tcp connection.
func From(e event.Event) *Conn {
	c, _ := e.Connection().(*Conn)
	return c
}

func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) String() string {
	return c.id + "@" + c.rawConn.RemoteAddr().String()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.rawConn.RemoteAddr()
}

func (c *Conn) LocalAddr() net.Addr {
	return c.rawConn.LocalAddr()
}

// RemotePort returns the peer's port, or 0 for non-TCP sockets.
func (c *Conn) RemotePort() int {
	if addr, ok := c.rawConn.RemoteAddr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

func (c *Conn) LocalPort() int {
	if addr, ok := c.rawConn.LocalAddr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// Server returns the owning server, or nil for a standalone connection.
func (c *Conn) Server() *Server {
	return c.server
}

func (c *Conn) IsPartOfServer() bool {
	return c.server != nil
}

func (c *Conn) Context() context.Context {
	return c.ctx
}

// Done is closed once teardown, including the disconnect event, completed.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

func (c *Conn) IsClosed() bool {
	return c.closed.Load()
}

// Cause returns the recorded disconnect cause, CauseNone while open.
func (c *Conn) Cause() event.DisconnectCause {
	return event.DisconnectCause(c.cause.Load())
}

func (c *Conn) ReadTimeout() time.Duration {
	return time.Duration(c.readTimeout.Load())
}

// SetReadTimeout changes the read timeout. It also re-arms the deadline of a
// read that is already blocked.
func (c *Conn) SetReadTimeout(timeout time.Duration) {
	if timeout < 0 {
		timeout = 0
	}
	c.readTimeout.Store(int64(timeout))
	if !c.IsClosed() {
		_ = c.armReadDeadline()
	}
}

func (c *Conn) WriteTimeout() time.Duration {
	return time.Duration(c.writeTimeout.Load())
}

func (c *Conn) SetWriteTimeout(timeout time.Duration) {
	if timeout < 0 {
		timeout = 0
	}
	c.writeTimeout.Store(int64(timeout))
}

func (c *Conn) MaxLineLength() int {
	return c.codec.MaxLineLength()
}

func (c *Conn) SetMaxLineLength(n int) {
	c.codec.SetMaxLineLength(n)
}

func (c *Conn) Charset() *charset.Charset {
	return c.codec.Charset()
}

func (c *Conn) SetCharset(cs *charset.Charset) {
	c.codec.SetCharset(cs)
}

func (c *Conn) SetNextLineIgnore(ignore bool) {
	c.codec.SetNextLineIgnore(ignore)
}

func (c *Conn) IsNextLineIgnored() bool {
	return c.codec.IsNextLineIgnored()
}

func (c *Conn) Reader() io.Reader {
	return c.rawConn
}

func (c *Conn) Writer() io.Writer {
	return c.rawConn
}

// ReadLine reads directly from the socket. The read loop already consumes
// every line, so calling this on a running connection races with it.
func (c *Conn) ReadLine() (string, error) {
	return c.codec.ReadLine()
}

// Send raises a MessageSendEvent and, unless a handler cancels it, writes
// the event's message as one line. A cancelled send returns nil. A failed
// write is returned to the caller and does not close the connection.
func (c *Conn) Send(message string) error {
	if c.IsClosed() {
		return constant.ErrConnectionClosed
	}

	e := event.NewMessageSendEvent(c, message)
	if event.Dispatch(e, c.SendHandler(), c.server.sendHandler()) {
		c.metrics.SendCancelled()
		logger.Debugf("send cancelled, conn: %s", c.id)
		return nil
	}

	if err := c.armWriteDeadline(); err != nil {
		return muxerrors.ConvertNetError(err, constant.ErrMessageWriteFailed).WithContext("conn", c.id)
	}
	if err := c.codec.Send(e.Message()); err != nil {
		if c.IsClosed() {
			return constant.ErrConnectionClosed
		}
		logger.Warnf("send failed, conn: %s, err: %v", c.id, err)
		return muxerrors.ConvertNetError(err, constant.ErrMessageWriteFailed).WithContext("conn", c.id)
	}
	c.metrics.MessageSent()
	return nil
}

// Close tears the connection down with CauseClosed unless another cause was
// already recorded. Only the first call does any work.
func (c *Conn) Close() error {
	return c.CloseWithCause(event.CauseClosed)
}

// CloseWithCause is Close with a caller chosen cause, for example
// event.CauseError from protocol code.
func (c *Conn) CloseWithCause(cause event.DisconnectCause) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if cause == event.CauseNone {
		cause = event.CauseClosed
	}

	err := c.rawConn.Close()
	c.claimCause(cause)
	c.cancel()

	final := c.Cause()
	event.Dispatch(event.NewDisconnectEvent(c, final), c.DisconnectHandler(), c.server.disconnectHandler())

	if c.server != nil {
		c.server.remove(c)
	}
	c.metrics.Disconnected(final.String())
	logger.Infof("connection closed, conn: %s, cause: %s", c.id, final)
	close(c.done)

	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (c *Conn) claimCause(cause event.DisconnectCause) bool {
	return c.cause.CompareAndSwap(int32(event.CauseNone), int32(cause))
}

func (c *Conn) readLoop() {
	defer utils.PanicHandler(func() {
		c.claimCause(event.CauseError)
		_ = c.Close()
	})

	for !c.IsClosed() {
		if err := c.armReadDeadline(); err != nil {
			c.handleReadError(err)
			break
		}
		message, err := c.codec.ReadLine()
		if err != nil {
			c.handleReadError(err)
			break
		}
		c.metrics.MessageReceived()
		e := event.NewMessageReceiveEvent(c, message)
		event.Dispatch(e, c.ReceiveHandler(), c.server.receiveHandler())
	}
	_ = c.Close()
}

func (c *Conn) handleReadError(err error) {
	var muxErr *muxerrors.MuxError
	switch {
	case errors.Is(err, io.EOF):
		c.claimCause(event.CauseDisconnected)
	case line.IsTimeout(err):
		c.claimCause(event.CauseTimeout)
	case errors.Is(err, constant.ErrLineTooLong),
		errors.As(err, &muxErr) && muxErr.Category == muxerrors.CategoryProtocol:
		logger.Warnf("protocol error, conn: %s, err: %v", c.id, err)
		c.claimCause(event.CauseError)
	case c.IsClosed():
		// Close won the race; it records its own cause.
	default:
		logger.Warnf("read failed, conn: %s, err: %v", c.id, err)
		c.claimCause(event.CauseDisconnected)
	}
}

func (c *Conn) armReadDeadline() error {
	if timeout := c.ReadTimeout(); timeout > 0 {
		return c.rawConn.SetReadDeadline(time.Now().Add(timeout))
	}
	return c.rawConn.SetReadDeadline(time.Time{})
}

func (c *Conn) armWriteDeadline() error {
	if timeout := c.WriteTimeout(); timeout > 0 {
		return c.rawConn.SetWriteDeadline(time.Now().Add(timeout))
	}
	return nil
}

func (c *Conn) ConnectHandler() event.Handler[*event.ConnectEvent] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.onConnect
}

// SetConnectHandler replaces the stored handler. The connect event of c was
// raised during construction, so only WithConnectHandler can observe it.
func (c *Conn) SetConnectHandler(h event.Handler[*event.ConnectEvent]) {
	c.mu.Lock()
	c.onConnect = h
	c.mu.Unlock()
}

func (c *Conn) ReceiveHandler() event.Handler[*event.MessageReceiveEvent] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.onReceive
}

func (c *Conn) SetReceiveHandler(h event.Handler[*event.MessageReceiveEvent]) {
	c.mu.Lock()
	c.onReceive = h
	c.mu.Unlock()
}

func (c *Conn) SendHandler() event.Handler[*event.MessageSendEvent] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.onSend
}

func (c *Conn) SetSendHandler(h event.Handler[*event.MessageSendEvent]) {
	c.mu.Lock()
	c.onSend = h
	c.mu.Unlock()
}

func (c *Conn) DisconnectHandler() event.Handler[*event.DisconnectEvent] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.onDisconnect
}

func (c *Conn) SetDisconnectHandler(h event.Handler[*event.DisconnectEvent]) {
	c.mu.Lock()
	c.onDisconnect = h
	c.mu.Unlock()
}
