package server

import (
	"fmt"
	"github.com/IDSolutions/ramdb/lib/extension"
	"github.com/IDSolutions/ramdb/rpc/common"
	"strconv"
	"sync"
)

// NewExtensionAdapter creates an adapter for host. It registers itself as the
// callback receiver of host, frames emitted during a call are returned with
// the call response.
func NewExtensionAdapter(host *extension.Host) IRPCServerAdapter {
	a := &extensionAdapterImpl{host: host}
	host.RegisterCallback(func(name, function, data string) {
		// only called from within Handle, mu is held
		a.pending = append(a.pending, common.Callback{Name: name, Function: function, Data: data})
	})
	return a
}

// extensionAdapterImpl runs one call at a time, like the native extension interface
type extensionAdapterImpl struct {
	host    *extension.Host
	mu      sync.Mutex
	pending []common.Callback
}

func (a *extensionAdapterImpl) Handle(req *common.Message) *common.Message {
	switch req.MsgType {
	case common.MsgTCall:
		a.mu.Lock()
		defer a.mu.Unlock()

		a.pending = nil
		var result []string
		if req.Caller != nil {
			out, code := a.host.CallWithContext(toCallContext(req.Caller), req.Function, req.Args)
			result = []string{out, strconv.Itoa(code)}
		} else {
			var err error
			if result, err = a.host.Call(req.Function, req.Args); err != nil {
				return common.NewCallResponse(nil, nil, err)
			}
		}
		callbacks := a.pending
		a.pending = nil
		return common.NewCallResponse(result, callbacks, nil)

	case common.MsgTPing:
		return common.NewPingResponse(extension.Version, nil)

	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC ExtensionAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}

func toCallContext(c *common.Caller) extension.CallContext {
	return extension.CallContext{
		SteamID:             c.SteamID,
		FileSource:          c.FileSource,
		MissionName:         c.MissionName,
		ServerName:          c.ServerName,
		RemoteExecutedOwner: int(c.RemoteExecutedOwner),
	}
}
