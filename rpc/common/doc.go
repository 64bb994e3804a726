// Package common provides the data structures shared by the ramdb RPC client
// and server: the wire Message, configuration structs and the log format.
//
// Key Components:
//
//   - Message: the single structure used for requests and responses. A Call
//     request names the hosted extension, the function and its arguments and
//     optionally carries the Caller context. The response carries the raw
//     extension result and every Callback frame the extension emitted while
//     the call ran.
//
//   - MessageType: Call, Ping and the control types Error and Success.
//
//   - ServerConfig / ClientConfig: configuration for `ramdb serve` and for
//     clients of the Extension Channel, with String() renderers for logging.
//
//   - Logger: an implementation of dragonboat's logger.ILogger writing
//     "LEVEL | package | message" lines. InitLoggers installs it for every
//     package logger.
package common
