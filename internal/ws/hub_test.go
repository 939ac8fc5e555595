package ws

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	writeErr error
	closed   bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.messages = append(c.messages, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub(nil)
	first := &fakeConn{}
	second := &fakeConn{}
	hub.Register(first)
	hub.Register(second)

	hub.Broadcast([]byte(`{"type":"STATUS_UPDATE"}`))

	require.Len(t, first.messages, 1)
	require.Len(t, second.messages, 1)
	assert.Equal(t, first.messages[0], second.messages[0])
}

func TestBroadcastDropsFailingClients(t *testing.T) {
	hub := NewHub(nil)
	healthy := &fakeConn{}
	broken := &fakeConn{writeErr: errors.New("write: broken pipe")}
	hub.Register(healthy)
	hub.Register(broken)

	hub.Broadcast([]byte("x"))

	assert.Equal(t, 1, hub.ClientCount())
	assert.True(t, broken.closed)
	require.Len(t, healthy.messages, 1)

	hub.Broadcast([]byte("y"))
	assert.Len(t, healthy.messages, 2)
}

// serialConn flags temporally overlapping WriteMessage calls, which the
// real websocket connection forbids.
type serialConn struct {
	mu       sync.Mutex
	inFlight bool
	overlap  bool
	writes   int
}

func (c *serialConn) WriteMessage(int, []byte) error {
	c.mu.Lock()
	if c.inFlight {
		c.overlap = true
	}
	c.inFlight = true
	c.mu.Unlock()

	time.Sleep(time.Millisecond)

	c.mu.Lock()
	c.inFlight = false
	c.writes++
	c.mu.Unlock()
	return nil
}

func (c *serialConn) Close() error { return nil }

func TestConcurrentBroadcastsSerializePerConnection(t *testing.T) {
	hub := NewHub(nil)
	conn := &serialConn{}
	hub.Register(conn)

	const broadcasts = 20
	var wg sync.WaitGroup
	for i := 0; i < broadcasts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Broadcast([]byte("x"))
		}()
	}
	wg.Wait()

	conn.mu.Lock()
	defer conn.mu.Unlock()
	assert.False(t, conn.overlap, "concurrent write to one websocket connection")
	assert.Equal(t, broadcasts, conn.writes)
}

func TestUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	conn := &fakeConn{}
	hub.Register(conn)
	hub.Unregister(conn)
	hub.Unregister(conn)
	assert.Equal(t, 0, hub.ClientCount())

	hub.Broadcast([]byte("x"))
	assert.Empty(t, conn.messages)
}
