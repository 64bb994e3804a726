// Package tcp implements the TCP socket transport of the ramdb RPC system on top
// of the base package. It adds connectors that dial and listen on TCP and apply
// the configured socket options (TCP_NODELAY, keep-alive, linger, buffer sizes)
// to every connection.
//
// The default server read buffer is 512 KB.
package tcp
