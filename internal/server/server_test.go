package server_test

import (
	"bufio"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jassi-singh/kvsd/internal/engine"
	"github.com/jassi-singh/kvsd/internal/pool"
	"github.com/jassi-singh/kvsd/internal/server"
)

func startServer(t *testing.T) net.Addr {
	t.Helper()

	eng, err := engine.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	p := pool.NewFixedPool(4)
	s := server.New(ln, eng, p)

	go s.Serve()

	return ln.Addr()
}

func roundTrip(t *testing.T, addr net.Addr, request string) string {
	t.Helper()

	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(request + "\n"))
	require.NoError(t, err)

	reply, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	return reply[:len(reply)-1]
}

func TestServerGetSetRemoveOverTheWire(t *testing.T) {
	addr := startServer(t)

	assert.Equal(t, "Key not found", roundTrip(t, addr, `{"Get":"a"}`))
	assert.Equal(t, "Success", roundTrip(t, addr, `{"Set":["a","1"]}`))
	assert.Equal(t, "1", roundTrip(t, addr, `{"Get":"a"}`))
	assert.Equal(t, "Success", roundTrip(t, addr, `{"Rm":"a"}`))
	assert.Equal(t, "Key not found", roundTrip(t, addr, `{"Rm":"a"}`))
}

func TestServerMalformedRequestDoesNotCrashWorker(t *testing.T) {
	addr := startServer(t)

	roundTrip(t, addr, `not json`)

	// The pool must still have a free worker for the next request.
	assert.Equal(t, "Success", roundTrip(t, addr, `{"Set":["a","1"]}`))
}

func TestServerConcurrentClients(t *testing.T) {
	addr := startServer(t)

	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			roundTrip(t, addr, `{"Set":["k","v"]}`)
		}(i)
	}
	for i := 0; i < 20; i++ {
		<-done
	}

	assert.Equal(t, "v", roundTrip(t, addr, `{"Get":"k"}`))
}
