// Package rpc exposes the ArmaRAMDb extension to other processes. It carries
// extension calls, their results and the callback frames emitted during a
// call between a client and the server hosting the extension.
//
// The package is organized into several subpackages:
//
//   - common: the Message protocol, configuration structures and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets, HTTP).
//
//   - serializer: Message serialization with multiple format options (JSON, GOB,
//     Binary, CBOR, Protobuf wire format).
//
//   - client: RPCExtension, a ramdb.IExtension calling a remote extension and
//     replaying its callback frames locally.
//
//   - server: the RPC server and the adapter running calls on an extension host.
package rpc
