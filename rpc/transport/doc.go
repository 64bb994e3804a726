// Package transport defines the contract between the ramdb RPC client/server and
// the byte transports carrying serialized messages.
//
// Key Components:
//
//   - IRPCClientTransport: connects to one or more endpoints and sends a request,
//     returning the raw response.
//
//   - IRPCServerTransport: listens for requests and hands them to the registered
//     ServerHandleFunc.
//
// Implementations live in the subpackages tcp, unix (both built on base) and
// http.
package transport
