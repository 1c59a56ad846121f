// Package testutil holds helpers shared by tests across the module.
package testutil

import (
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	portsMu   sync.Mutex
	handedOut = make(map[int]struct{})
)

// FreePort returns a TCP port on 127.0.0.1 that was free a moment ago and has not been handed
// to another test in this process.
func FreePort(t *testing.T) int {
	t.Helper()
	portsMu.Lock()
	defer portsMu.Unlock()

	for {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err, "failed to probe for a free port")
		port := ln.Addr().(*net.TCPAddr).Port
		require.NoError(t, ln.Close())

		if _, taken := handedOut[port]; taken {
			continue
		}
		handedOut[port] = struct{}{}
		return port
	}
}

// OccupyPort binds a port on 127.0.0.1 and holds it until the test ends, so code under test
// can hit a bind conflict.
func OccupyPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "failed to occupy a port")
	t.Cleanup(func() { _ = ln.Close() })
	return ln.Addr().(*net.TCPAddr).Port
}
