// Package serializer converts common.Message values to and from bytes for the
// ramdb RPC layer. All implementations satisfy IRPCSerializer, are stateless
// and safe for concurrent use.
//
// Implementations:
//
//   - Binary: custom flag based format. Only present fields are written, every
//     string is a big endian uint32 length followed by its bytes. Smallest and
//     fastest, the default for tcp and unix transports.
//
//   - JSON: human readable, useful for debugging with curl against the http
//     transport.
//
//   - GOB: Go's gob encoding. Kept for compatibility, larger than Binary.
//
//   - CBOR: deterministic CBOR (github.com/fxamacker/cbor/v2) using the json
//     field names, for non-Go clients that prefer a binary format.
//
//   - Proto: the protobuf wire format written with protowire, so the schema
//     documented on NewProtoSerializer can be used from any protobuf runtime.
//
// Usage:
//
//	s := serializer.NewBinarySerializer()
//	data, err := s.Serialize(*common.NewCallRequest("ArmaRAMDb", "get", []string{"player_42"}, nil))
//	// ... send data ...
//	var resp common.Message
//	err = s.Deserialize(received, &resp)
package serializer
