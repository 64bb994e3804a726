package server

import (
	"github.com/IDSolutions/ramdb/rpc/common"
)

// IRPCServerAdapter is the interface for all RPC server adapters.
// An adapter owns one hosted extension and translates messages into calls on it.
type IRPCServerAdapter interface {
	// Handle handles a request and returns a response
	// If an error occurs, it should be set in the response
	Handle(req *common.Message) (resp *common.Message)
}
