// Package http implements the HTTP transport of the ramdb RPC system.
//
// The server accepts serialized messages with POST /rpc and answers with the
// serialized response. GET /healthz reports liveness. The client posts to
// "<endpoint>/rpc", selecting endpoints round robin. Endpoints without a
// scheme default to http.
//
// Using the JSON serializer the channel can be exercised with curl:
//
//	curl -d '{"msg_type":"call","extension":"ArmaRAMDb","function":"get","args":["player_42"]}' localhost:8080/rpc
package http
