package remote

import (
	"github.com/IDSolutions/ramdb/lib/ramdb"
	"github.com/IDSolutions/ramdb/lib/sqf"
)

// InvokePath is the path the receiver serves
const InvokePath = "/invoke"

// Invocation is the request body of POST /invoke
type Invocation struct {
	ID       string `json:"id"`
	Function string `json:"function"`
	Mode     string `json:"mode"`
	// Data is the payload as game literal
	Data string `json:"data"`
}

// Reply is the response body of POST /invoke
type Reply struct {
	ID     string `json:"id"`
	Result string `json:"result,omitempty"`
	Err    string `json:"err,omitempty"`
}

func newInvocation(id, function string, mode ramdb.Mode, data any) (*Invocation, error) {
	lit, err := sqf.Format(data)
	if err != nil {
		return nil, err
	}
	return &Invocation{ID: id, Function: function, Mode: mode.String(), Data: lit}, nil
}

func (inv *Invocation) mode() ramdb.Mode {
	if inv.Mode == ramdb.ModeCall.String() {
		return ramdb.ModeCall
	}
	return ramdb.ModeExec
}
