// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/cocowh/linemux/core/charset"
	"github.com/cocowh/linemux/core/constant"
	"github.com/cocowh/linemux/core/event"
	"github.com/cocowh/linemux/core/observability"
	"github.com/cocowh/linemux/core/pool"
	"github.com/cocowh/linemux/core/utils"
	"github.com/cocowh/linemux/pkg/logger"
)

const maxAcceptDelay = time.Second

// Server accepts TCP connections and owns the resulting Conns. Its handlers
// form the second dispatch tier of every owned connection.
type Server struct {
	mu         sync.Mutex
	listener   net.Listener
	network    string
	addr       string
	opts       *ServerOptions
	ctx        context.Context
	cancel     context.CancelFunc
	acceptDone chan struct{}
	workers    *pool.Pool

	connsMu sync.RWMutex
	conns   map[string]*Conn

	hmu          sync.RWMutex
	onConnect    event.Handler[*event.ConnectEvent]
	onReceive    event.Handler[*event.MessageReceiveEvent]
	onSend       event.Handler[*event.MessageSendEvent]
	onDisconnect event.Handler[*event.DisconnectEvent]
}

type ServerOptions struct {
	// ReadTimeout, WriteTimeout, MaxLineLength and Charset are the initial
	// settings of every accepted connection.
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxLineLength  int
	Charset        *charset.Charset
	MaxConnections int
	// BroadcastWorkers bounds the sends a broadcast runs in parallel.
	// 0 sends sequentially on the calling goroutine.
	BroadcastWorkers int
	Metrics          *observability.Metrics
}

func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		WriteTimeout:     5 * time.Second,
		MaxConnections:   1000,
		BroadcastWorkers: 8,
		Charset:          charset.Default(),
	}
}

func NewServer(network, addr string, opts *ServerOptions) *Server {
	if opts == nil {
		opts = NewServerOptions()
	}
	if opts.Charset == nil {
		opts.Charset = charset.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		network: network,
		addr:    addr,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		conns:   make(map[string]*Conn),
	}
}

// Listen binds a TCP server to port on all interfaces and starts accepting.
// Port 0 picks a free port; see Addr.
func Listen(port int, opts *ServerOptions) (*Server, error) {
	s := NewServer("tcp", fmt.Sprintf(":%d", port), opts)
	if err := s.Start(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return constant.ErrServerClosed
	}
	if s.listener != nil {
		return constant.ErrServerStarted
	}

	listener, err := net.Listen(s.network, s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.acceptDone = make(chan struct{})
	if s.opts.BroadcastWorkers > 0 {
		s.workers = pool.New(s.opts.BroadcastWorkers, s.opts.BroadcastWorkers*4)
	}

	logger.Infof("TCP server started on %s", listener.Addr())

	go s.acceptLoop(listener, s.acceptDone)

	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Port returns the bound TCP port, or 0 before Start.
func (s *Server) Port() int {
	if addr, ok := s.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// Stop closes the listener, waits for the accept loop to exit and closes
// every registered connection with CauseClosed.
func (s *Server) Stop() error {
	s.mu.Lock()
	s.cancel()
	listener, acceptDone, workers := s.listener, s.acceptDone, s.workers
	s.mu.Unlock()

	var err error
	if listener != nil {
		if closeErr := listener.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
			err = multierr.Append(err, closeErr)
		}
		<-acceptDone
	}

	for _, conn := range s.Connections() {
		err = multierr.Append(err, conn.Close())
	}
	if workers != nil {
		workers.Shutdown()
	}

	logger.Infof("TCP server stopped")
	return err
}

func (s *Server) acceptLoop(listener net.Listener, done chan struct{}) {
	defer close(done)
	defer utils.PanicHandler(func() {
		logger.Errorf("TCP server accept loop panic, addr: %s", listener.Addr())
	})

	var delay time.Duration
	for {
		rawConn, err := listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else {
				delay = min(delay*2, maxAcceptDelay)
			}
			logger.Warnf("Accept error: %v; retrying in %v", err, delay)
			select {
			case <-time.After(delay):
			case <-s.ctx.Done():
				return
			}
			continue
		}
		delay = 0

		if s.opts.MaxConnections > 0 && s.Len() >= s.opts.MaxConnections {
			_ = rawConn.Close()
			s.opts.Metrics.ConnectionRejected()
			logger.Warnf("Too many connections, rejecting %s", rawConn.RemoteAddr())
			continue
		}

		conn := newConn(rawConn, s, s.connOptions())
		logger.Infof("New connection established from %s, conn: %s", rawConn.RemoteAddr(), conn.ID())
		go conn.readLoop()
	}
}

func (s *Server) connOptions() *options {
	return &options{
		readTimeout:   s.opts.ReadTimeout,
		writeTimeout:  s.opts.WriteTimeout,
		maxLineLength: s.opts.MaxLineLength,
		charset:       s.opts.Charset,
		metrics:       s.opts.Metrics,
	}
}

func (s *Server) add(c *Conn) {
	s.connsMu.Lock()
	s.conns[c.ID()] = c
	s.connsMu.Unlock()
	s.opts.Metrics.ConnectionAccepted()
}

func (s *Server) remove(c *Conn) {
	s.connsMu.Lock()
	_, ok := s.conns[c.ID()]
	delete(s.conns, c.ID())
	s.connsMu.Unlock()
	if ok {
		s.opts.Metrics.ConnectionRemoved()
	}
}

// Get looks up a live connection by ID.
func (s *Server) Get(id string) (*Conn, bool) {
	s.connsMu.RLock()
	defer s.connsMu.RUnlock()
	conn, ok := s.conns[id]
	return conn, ok
}

// Connections returns a snapshot of the registry.
func (s *Server) Connections() []*Conn {
	s.connsMu.RLock()
	defer s.connsMu.RUnlock()
	conns := make([]*Conn, 0, len(s.conns))
	for _, conn := range s.conns {
		conns = append(conns, conn)
	}
	return conns
}

func (s *Server) Len() int {
	s.connsMu.RLock()
	defer s.connsMu.RUnlock()
	return len(s.conns)
}

// Broadcast sends message to every live connection. Connections that close
// while the broadcast runs are skipped; other send errors are combined.
func (s *Server) Broadcast(message string) error {
	return s.BroadcastExcept(message, nil)
}

// BroadcastExcept is Broadcast without the given connection. It returns
// after every send finished, so successive broadcasts from one goroutine
// reach each peer in order. Sends may run on pool workers, so send
// handlers must not broadcast themselves.
func (s *Server) BroadcastExcept(message string, except *Conn) error {
	var (
		mu  sync.Mutex
		err error
	)
	send := func(conn *Conn) {
		if sendErr := conn.Send(message); sendErr != nil && !errors.Is(sendErr, constant.ErrConnectionClosed) {
			mu.Lock()
			err = multierr.Append(err, sendErr)
			mu.Unlock()
		}
	}

	var targets []*Conn
	for _, conn := range s.Connections() {
		if conn != except && !conn.IsClosed() {
			targets = append(targets, conn)
		}
	}

	s.mu.Lock()
	workers := s.workers
	s.mu.Unlock()

	if workers == nil || len(targets) < 2 {
		for _, conn := range targets {
			send(conn)
		}
		return err
	}

	fns := make([]func(), len(targets))
	for i, conn := range targets {
		fns[i] = func() { send(conn) }
	}
	workers.Go(fns...)
	return err
}

// SetConnectHandler sets the server tier for connect events. They are raised
// on the accept goroutine, so a handler that blocks, for example on a send to
// a slow peer, delays accepting further connections.
func (s *Server) SetConnectHandler(h event.Handler[*event.ConnectEvent]) {
	s.hmu.Lock()
	s.onConnect = h
	s.hmu.Unlock()
}

func (s *Server) SetReceiveHandler(h event.Handler[*event.MessageReceiveEvent]) {
	s.hmu.Lock()
	s.onReceive = h
	s.hmu.Unlock()
}

func (s *Server) SetSendHandler(h event.Handler[*event.MessageSendEvent]) {
	s.hmu.Lock()
	s.onSend = h
	s.hmu.Unlock()
}

func (s *Server) SetDisconnectHandler(h event.Handler[*event.DisconnectEvent]) {
	s.hmu.Lock()
	s.onDisconnect = h
	s.hmu.Unlock()
}

// The getters below are called through a possibly nil *Server by standalone
// connections.

func (s *Server) connectHandler() event.Handler[*event.ConnectEvent] {
	if s == nil {
		return nil
	}
	s.hmu.RLock()
	defer s.hmu.RUnlock()
	return s.onConnect
}

func (s *Server) receiveHandler() event.Handler[*event.MessageReceiveEvent] {
	if s == nil {
		return nil
	}
	s.hmu.RLock()
	defer s.hmu.RUnlock()
	return s.onReceive
}

func (s *Server) sendHandler() event.Handler[*event.MessageSendEvent] {
	if s == nil {
		return nil
	}
	s.hmu.RLock()
	defer s.hmu.RUnlock()
	return s.onSend
}

func (s *Server) disconnectHandler() event.Handler[*event.DisconnectEvent] {
	if s == nil {
		return nil
	}
	s.hmu.RLock()
	defer s.hmu.RUnlock()
	return s.onDisconnect
}
