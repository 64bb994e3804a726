package client

import (
	"fmt"
	"github.com/IDSolutions/ramdb/lib/ramdb"
	"github.com/IDSolutions/ramdb/rpc/common"
	"github.com/IDSolutions/ramdb/rpc/serializer"
	"github.com/IDSolutions/ramdb/rpc/transport"
	"sync/atomic"
)

// NewRPCExtension connects transport and returns the remote extension named
// config.Extension. The result implements ramdb.IExtension and
// ramdb.ICallbackSource.
func NewRPCExtension(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*RPCExtension, error) {
	if config.Extension == "" {
		return nil, fmt.Errorf("no extension name configured")
	}
	if config.Transport.RetryCount > 1 {
		Logger.Warningf("retry count %d: extension calls are not idempotent and may be applied more than once", config.Transport.RetryCount)
	}

	if err := transport.Connect(config); err != nil {
		return nil, ramdb.Unavailable(err)
	}

	return &RPCExtension{
		rpcClientAdapter: rpcClientAdapter{
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

// RPCExtension is the Extension Channel over the RPC transport
type RPCExtension struct {
	rpcClientAdapter
	callback atomic.Pointer[ramdb.CallbackFunc]
	caller   atomic.Pointer[common.Caller]
}

// --------------------------------------------------------------------------
// Interface Methods (docu see lib/ramdb/interface.go)
// --------------------------------------------------------------------------

// Call sends one call and returns the raw response. Callback frames returned
// with the response are delivered to the registered callback, in order, before
// Call returns. Every failure matches ramdb.ErrChannelUnavailable.
func (e *RPCExtension) Call(function string, args []string) ([]string, error) {
	req := common.NewCallRequest(e.config.Extension, function, args, e.caller.Load())
	resp, err := invokeRPCRequest(req, e.transport, e.serializer)
	if err != nil {
		return nil, ramdb.Unavailable(err)
	}

	if cb := e.callback.Load(); cb != nil {
		for _, frame := range resp.Callbacks {
			(*cb)(frame.Name, frame.Function, frame.Data)
		}
	} else if len(resp.Callbacks) > 0 {
		Logger.Warningf("dropped %d callback frames of %s, no callback registered", len(resp.Callbacks), function)
	}

	return resp.Result, nil
}

func (e *RPCExtension) RegisterCallback(cb ramdb.CallbackFunc) {
	e.callback.Store(&cb)
}

// --------------------------------------------------------------------------
// Additional Methods
// --------------------------------------------------------------------------

// SetCaller sets the context sent with every call. nil uses the server's context.
func (e *RPCExtension) SetCaller(caller *common.Caller) {
	e.caller.Store(caller)
}

// Ping returns the version of the remote extension
func (e *RPCExtension) Ping() (string, error) {
	resp, err := invokeRPCRequest(common.NewPingRequest(e.config.Extension), e.transport, e.serializer)
	if err != nil {
		return "", ramdb.Unavailable(err)
	}
	if len(resp.Result) == 0 {
		return "", nil
	}
	return resp.Result[0], nil
}

// Endpoints returns the configured server endpoints
func (e *RPCExtension) Endpoints() []string {
	return e.config.Transport.Endpoints
}

// Close closes the transport
func (e *RPCExtension) Close() error {
	return e.transport.Close()
}
