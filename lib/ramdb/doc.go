/*
Package ramdb implements the database access protocol of the ArmaRAMDb extension.

A fetch runs through the following steps:

	Request.Args   build [key] ++ params ++ [function, recipient, mode]
	gate.Acquire   one extension call in flight per process
	IExtension     call(operation, args) -> response
	Classify       "NotFound"/"[]" -> not found, "OK" -> chunked, else decode literal
	IDiagnostics   one line per terminal outcome
	gate.Release   on every exit path
	Dispatcher     return the data or forward it to a remote recipient

Payloads larger than the extension output buffer are answered with "OK" and
streamed as callback frames. The Assembler reassembles those frames and
delivers the payload through the same Dispatcher. Register it with
Client.RegisterCallback: frames emitted during a call are held until the gate
is released, so the receiver of a payload may fetch again.

Errors are reported with the sentinels ErrChannelUnavailable and
ErrDecodeFailure (check with errors.Is). Not found and chunked outcomes are
not errors.
*/
package ramdb
