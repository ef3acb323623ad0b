// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tcp

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocowh/linemux/core/constant"
	"github.com/cocowh/linemux/core/event"
	"github.com/cocowh/linemux/core/observability"
)

func TestServerStartTwice(t *testing.T) {
	s := startServer(t, nil)
	assert.ErrorIs(t, s.Start(), constant.ErrServerStarted)
	assert.NotZero(t, s.Port())
}

func TestServerStartAfterStop(t *testing.T) {
	s := NewServer("tcp", "127.0.0.1:0", nil)
	require.NoError(t, s.Stop())
	assert.ErrorIs(t, s.Start(), constant.ErrServerClosed)
	assert.Nil(t, s.Addr())
}

func TestServerRegistry(t *testing.T) {
	s := startServer(t, nil)
	ids := make(chan string, 3)
	s.SetConnectHandler(func(e *event.ConnectEvent) {
		ids <- e.Connection().ID()
	})

	for i := 0; i < 3; i++ {
		dial(t, s)
	}
	require.Eventually(t, func() bool { return s.Len() == 3 }, waitTimeout, 5*time.Millisecond)

	for i := 0; i < 3; i++ {
		id := recv(t, ids)
		conn, ok := s.Get(id)
		require.True(t, ok)
		assert.Equal(t, id, conn.ID())
	}
	assert.Len(t, s.Connections(), 3)

	_, ok := s.Get("missing")
	assert.False(t, ok)
}

func TestBroadcast(t *testing.T) {
	for name, workers := range map[string]int{"pooled": 4, "sequential": 0} {
		t.Run(name, func(t *testing.T) {
			opts := NewServerOptions()
			opts.BroadcastWorkers = workers
			s := startServer(t, opts)
			var serverSends atomic.Int32
			s.SetSendHandler(func(e *event.MessageSendEvent) {
				serverSends.Add(1)
			})

			const clients = 3
			received := make(chan string, clients)
			for i := 0; i < clients; i++ {
				dial(t, s, WithReceiveHandler(func(e *event.MessageReceiveEvent) {
					received <- e.Message()
				}))
			}
			require.Eventually(t, func() bool { return s.Len() == clients }, waitTimeout, 5*time.Millisecond)

			require.NoError(t, s.Broadcast("hi all"))
			for i := 0; i < clients; i++ {
				assert.Equal(t, "hi all", recv(t, received))
			}
			assert.Equal(t, int32(clients), serverSends.Load())
		})
	}
}

func TestBroadcastSlowPeerDoesNotDelayOthers(t *testing.T) {
	s := startServer(t, nil)
	release := make(chan struct{})

	const clients = 2
	received := make(chan string, clients)
	for i := 0; i < clients; i++ {
		dial(t, s, WithReceiveHandler(func(e *event.MessageReceiveEvent) {
			received <- e.Message()
		}))
	}
	require.Eventually(t, func() bool { return s.Len() == clients }, waitTimeout, 5*time.Millisecond)

	// the first peer's send blocks in its handler; the second still gets the line
	var blocked atomic.Bool
	s.SetSendHandler(func(e *event.MessageSendEvent) {
		if blocked.CompareAndSwap(false, true) {
			<-release
		}
	})
	done := make(chan error, 1)
	go func() { done <- s.Broadcast("fan out") }()

	assert.Equal(t, "fan out", recv(t, received))
	close(release)
	require.NoError(t, recv(t, done))
	assert.Equal(t, "fan out", recv(t, received))
}

func TestBroadcastExcept(t *testing.T) {
	s := startServer(t, nil)
	accepted := make(chan *Conn, 2)
	s.SetConnectHandler(func(e *event.ConnectEvent) {
		accepted <- From(e)
	})

	first := make(chan string, 1)
	second := make(chan string, 1)
	dial(t, s, WithReceiveHandler(func(e *event.MessageReceiveEvent) { first <- e.Message() }))
	sender := recv(t, accepted)
	dial(t, s, WithReceiveHandler(func(e *event.MessageReceiveEvent) { second <- e.Message() }))
	recv(t, accepted)

	require.NoError(t, s.BroadcastExcept("relay", sender))
	assert.Equal(t, "relay", recv(t, second))
	noRecv(t, first, 50*time.Millisecond)
}

func TestBroadcastDuringChurn(t *testing.T) {
	s := startServer(t, nil)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = s.Broadcast("tick")
			}
		}
	}()

	for i := 0; i < 20; i++ {
		c, err := Dial("127.0.0.1", s.Port())
		require.NoError(t, err)
		if i%2 == 0 {
			require.NoError(t, c.Close())
		} else {
			defer c.Close()
		}
	}
	close(stop)
	wg.Wait()
}

func TestMaxConnections(t *testing.T) {
	opts := NewServerOptions()
	opts.MaxConnections = 1
	opts.Metrics = observability.NewMetrics("test")
	s := startServer(t, opts)

	dial(t, s)
	require.Eventually(t, func() bool { return s.Len() == 1 }, waitTimeout, 5*time.Millisecond)

	causes := make(chan event.DisconnectCause, 1)
	dial(t, s, WithDisconnectHandler(func(e *event.DisconnectEvent) {
		causes <- e.Cause()
	}))
	assert.Equal(t, event.CauseDisconnected, recv(t, causes))
	assert.Equal(t, 1, s.Len())
}

func TestServerStop(t *testing.T) {
	s := NewServer("tcp", "127.0.0.1:0", nil)
	require.NoError(t, s.Start())

	serverCauses := make(chan event.DisconnectCause, 2)
	s.SetDisconnectHandler(func(e *event.DisconnectEvent) {
		serverCauses <- e.Cause()
	})

	clientCauses := make(chan event.DisconnectCause, 2)
	for i := 0; i < 2; i++ {
		dial(t, s, WithDisconnectHandler(func(e *event.DisconnectEvent) {
			clientCauses <- e.Cause()
		}))
	}
	require.Eventually(t, func() bool { return s.Len() == 2 }, waitTimeout, 5*time.Millisecond)

	require.NoError(t, s.Stop())
	assert.Equal(t, 0, s.Len())
	for i := 0; i < 2; i++ {
		assert.Equal(t, event.CauseClosed, recv(t, serverCauses))
		assert.Equal(t, event.CauseDisconnected, recv(t, clientCauses))
	}

	_, err := Dial("127.0.0.1", s.Port(), WithConnectTimeout(time.Second))
	assert.Error(t, err)
	require.NoError(t, s.Stop())
}

func TestConnectHandlerClosingConnection(t *testing.T) {
	s := startServer(t, nil)
	s.SetConnectHandler(func(e *event.ConnectEvent) {
		_ = From(e).Close()
	})
	causes := make(chan event.DisconnectCause, 1)
	s.SetDisconnectHandler(func(e *event.DisconnectEvent) {
		causes <- e.Cause()
	})

	dial(t, s)
	assert.Equal(t, event.CauseClosed, recv(t, causes))
	assert.Eventually(t, func() bool { return s.Len() == 0 }, waitTimeout, 5*time.Millisecond)
}

func TestManyClientsConcurrently(t *testing.T) {
	s := startServer(t, nil)
	var total atomic.Int32
	s.SetReceiveHandler(func(e *event.MessageReceiveEvent) {
		total.Add(1)
	})

	const clients, messages = 10, 20
	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		c := dial(t, s)
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < messages; j++ {
				assert.NoError(t, c.Send(fmt.Sprintf("client %d message %d", id, j)))
			}
		}(i)
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return total.Load() == clients*messages }, waitTimeout, 5*time.Millisecond)
}
