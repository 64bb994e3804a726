// Package base provides the protocol independent part of the tcp and unix
// transports: framing, request correlation, connection pooling and the
// per-connection worker pool of the server.
//
// Frame format:
//
//	8 bytes requestID (uint64, big endian)
//	4 bytes length    (uint32, big endian)
//	N bytes payload
//
// Key Components:
//
//   - IClientConnector/IServerConnector: protocol specific dial, listen and
//     socket option handling.
//
//   - clientTransport: keeps ConnectionsPerEndpoint connections per endpoint,
//     selects them round robin and correlates responses by requestID. A reader
//     goroutine per connection fails all pending requests when the connection
//     breaks and then reconnects.
//
//   - serverTransport: accepts connections, reads frames into pooled buffers
//     and processes up to WorkersPerConnection requests of a connection
//     concurrently.
//
// Retries:
//
//	Send retries a failed request RetryCount-1 times with exponential backoff.
//	Extension calls are not idempotent, so clients of the Extension Channel
//	keep RetryCount at 1.
package base
