package transport_test

import (
	"bytes"
	"fmt"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/IDSolutions/ramdb/rpc/common"
	"github.com/IDSolutions/ramdb/rpc/transport"
	"github.com/IDSolutions/ramdb/rpc/transport/http"
	"github.com/IDSolutions/ramdb/rpc/transport/tcp"
	"github.com/IDSolutions/ramdb/rpc/transport/unix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transportCase struct {
	name     string
	server   func() transport.IRPCServerTransport
	client   func() transport.IRPCClientTransport
	endpoint func(t *testing.T) string
}

func transportCases() []transportCase {
	loopback := func(*testing.T) string { return "127.0.0.1:0" }
	return []transportCase{
		{"tcp", tcp.NewTCPServerTransport, tcp.NewTCPClientTransport, loopback},
		{"unix", unix.NewUnixServerTransport, unix.NewUnixClientTransport, func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "ramdb.sock")
		}},
		{"http", http.NewHttpServerTransport, http.NewHttpClientTransport, loopback},
	}
}

// startServer runs srv with handler and returns the address it listens on
func startServer(t *testing.T, tc transportCase, handler transport.ServerHandleFunc) string {
	t.Helper()
	srv := tc.server()
	srv.RegisterHandler(handler)

	config := common.ServerConfig{TimeoutSecond: 5}
	config.Transport.Endpoint = tc.endpoint(t)
	config.Transport.WorkersPerConnection = 4

	done := make(chan error, 1)
	go func() { done <- srv.Listen(config) }()

	addr, ok := srv.(interface{ Addr() net.Addr })
	require.True(t, ok)
	require.Eventually(t, func() bool { return addr.Addr() != nil }, 5*time.Second, 5*time.Millisecond)

	t.Cleanup(func() {
		require.NoError(t, srv.Close())
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	if tc.name == "unix" {
		return config.Transport.Endpoint
	}
	return addr.Addr().String()
}

func connect(t *testing.T, tc transportCase, endpoint string) transport.IRPCClientTransport {
	t.Helper()
	c := tc.client()
	config := common.ClientConfig{TimeoutSecond: 5}
	config.Transport.Endpoints = []string{endpoint}
	config.Transport.ConnectionsPerEndpoint = 2
	config.Transport.RetryCount = 1
	require.NoError(t, c.Connect(config))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func reverse(req []byte) []byte {
	out := make([]byte, len(req))
	for i, b := range req {
		out[len(req)-1-i] = b
	}
	return out
}

// TestSendRoundTrip checks that every transport returns the handler response of the request
func TestSendRoundTrip(t *testing.T) {
	for _, tc := range transportCases() {
		t.Run(tc.name, func(t *testing.T) {
			endpoint := startServer(t, tc, reverse)
			c := connect(t, tc, endpoint)

			resp, err := c.Send([]byte("ramdb"))
			require.NoError(t, err)
			assert.Equal(t, []byte("bdmar"), resp)

			// empty payload
			resp, err = c.Send([]byte{})
			require.NoError(t, err)
			assert.Empty(t, resp)

			// payload larger than the pooled buffers
			big := bytes.Repeat([]byte("ab"), 600*1024)
			resp, err = c.Send(big)
			require.NoError(t, err)
			assert.Equal(t, reverse(big), resp)
		})
	}
}

// TestConcurrentSend checks that responses are correlated with their requests
func TestConcurrentSend(t *testing.T) {
	for _, tc := range transportCases() {
		t.Run(tc.name, func(t *testing.T) {
			endpoint := startServer(t, tc, func(req []byte) []byte {
				// uneven latency reorders responses on the wire
				if len(req)%2 == 0 {
					time.Sleep(2 * time.Millisecond)
				}
				return append([]byte("re:"), req...)
			})
			c := connect(t, tc, endpoint)

			var wg sync.WaitGroup
			errs := make(chan error, 64)
			for i := 0; i < 64; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					req := fmt.Sprintf("request-%d", i)
					resp, err := c.Send([]byte(req))
					if err != nil {
						errs <- err
						return
					}
					if string(resp) != "re:"+req {
						errs <- fmt.Errorf("got %q for %q", resp, req)
					}
				}(i)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				t.Error(err)
			}
		})
	}
}

// TestConnectFails checks that connecting to a closed endpoint reports an error
func TestConnectFails(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	endpoint := l.Addr().String()
	require.NoError(t, l.Close())

	config := common.ClientConfig{TimeoutSecond: 1}
	config.Transport.Endpoints = []string{endpoint}
	assert.Error(t, tcp.NewTCPClientTransport().Connect(config))
}

// TestSendAfterClose checks that a closed client transport refuses requests
func TestSendAfterClose(t *testing.T) {
	for _, tc := range transportCases() {
		t.Run(tc.name, func(t *testing.T) {
			endpoint := startServer(t, tc, reverse)
			c := connect(t, tc, endpoint)
			require.NoError(t, c.Close())

			_, err := c.Send([]byte("x"))
			assert.Error(t, err)
		})
	}
}
