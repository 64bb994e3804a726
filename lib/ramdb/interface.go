package ramdb

// --------------------------------------------------------------------------
// Collaborators
// --------------------------------------------------------------------------

// IExtension is the call interface of the external data extension.
// Implementations perform exactly one synchronous call per invocation and
// never retry on their own.
type IExtension interface {
	// Call invokes function with the argument vector and returns the raw
	// response. response[0] is the result string, further elements carry
	// auxiliary data (e.g. a return code).
	// A failure to reach the extension must be reported as an error wrapping
	// ErrChannelUnavailable, never as a "NotFound" result.
	Call(function string, args []string) (response []string, err error)
}

// IRemoteInvoker forwards data to a named function on a recipient.
type IRemoteInvoker interface {
	// RemoteExecCall invokes function on recipient with data using the
	// replicated call semantic. The remote return value is discarded.
	RemoteExecCall(function string, recipient string, data any) error

	// RemoteExec invokes function on recipient with data using the
	// replicated exec semantic. The invocation is scheduled and not awaited.
	RemoteExec(function string, recipient string, data any) error
}

// IDiagnostics receives one formatted line per terminal fetch outcome.
// Implementations must not fail the calling operation.
type IDiagnostics interface {
	Logf(format string, args ...interface{})
}

// CallbackFunc receives asynchronous frames emitted by the extension,
// mirroring the extension callback (name, function, data).
type CallbackFunc func(name, function, data string)

// ICallbackSource is implemented by extensions that emit callback frames.
type ICallbackSource interface {
	RegisterCallback(cb CallbackFunc)
}
