// Package server implements the ramdb RPC server. It hosts one or more
// extensions by name and serves them over any transport and serializer.
//
// Key Components:
//
//   - IRPCServerAdapter: translates a Message into a call on a hosted extension.
//
//   - NewExtensionAdapter: adapter for an *extension.Host. Calls are executed
//     one at a time. Callback frames the host emits while a call runs (chunked
//     results) are collected and returned with the response, so the client can
//     replay them in order before it returns the call result.
//
//   - Server: routes requests to the adapter registered under Message.Extension
//     and counts requests, errors and latency with VictoriaMetrics.
//
// Usage Example:
//
//	host := extension.NewHost(memstore.NewMemStore(), persister, extension.Config{})
//	s := server.NewRPCServer(config, tcp.NewTCPServerTransport(), serializer.NewBinarySerializer())
//	s.Register("ArmaRAMDb", server.NewExtensionAdapter(host))
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
package server
