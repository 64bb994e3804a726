package ramdb

import (
	"errors"
	"fmt"
)

// ErrNoInvoker is returned when remote dispatch is requested without a remote invoker.
var ErrNoInvoker = errors.New("ramdb: no remote invoker configured")

// Dispatcher routes decoded data either back to the caller or to a remote target.
type Dispatcher struct {
	invoker IRemoteInvoker
}

// NewDispatcher creates a dispatcher. invoker may be nil if remote targets are never used.
func NewDispatcher(invoker IRemoteInvoker) *Dispatcher {
	return &Dispatcher{invoker: invoker}
}

// Dispatch returns data unchanged when target has no recipient. Otherwise it
// performs exactly one remote invocation in the target's mode and returns nil.
func (d *Dispatcher) Dispatch(data any, target *RemoteTarget) (any, error) {
	if !target.Remote() {
		return data, nil
	}
	if d.invoker == nil {
		return nil, ErrNoInvoker
	}

	var err error
	switch target.Mode {
	case ModeCall:
		dispatchCall.Inc()
		err = d.invoker.RemoteExecCall(target.Function, target.Recipient, data)
	default:
		dispatchExec.Inc()
		err = d.invoker.RemoteExec(target.Function, target.Recipient, data)
	}
	if err != nil {
		return nil, fmt.Errorf("ramdb: dispatch %s %q to %q: %w", target.Mode, target.Function, target.Recipient, err)
	}
	return nil, nil
}
