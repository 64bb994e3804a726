package common

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// Request fields
	Extension string   `json:"extension,omitempty"` // Used for: Call, Ping
	Function  string   `json:"function,omitempty"`  // Used for: Call
	Args      []string `json:"args,omitempty"`      // Used for: Call
	Caller    *Caller  `json:"caller,omitempty"`    // Used for: Call (optional)

	// Response only fields
	Result    []string   `json:"result,omitempty"`    // Used for: Call, Ping responses
	Callbacks []Callback `json:"callbacks,omitempty"` // Frames emitted by the extension during a Call
	Err       string     `json:"err,omitempty"`       // Empty if no error, otherwise contains the error message
}

// Caller describes the game context a call is executed in.
type Caller struct {
	SteamID             string `json:"steam_id,omitempty"`
	FileSource          string `json:"file_source,omitempty"`
	MissionName         string `json:"mission_name,omitempty"`
	ServerName          string `json:"server_name,omitempty"`
	RemoteExecutedOwner int64  `json:"remote_executed_owner,omitempty"`
}

// Callback is one asynchronous frame emitted by the extension.
type Callback struct {
	Name     string `json:"name"`
	Function string `json:"function"`
	Data     string `json:"data"`
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewCallRequest creates a new Call request
func NewCallRequest(extension, function string, args []string, caller *Caller) *Message {
	return &Message{
		MsgType:   MsgTCall,
		Extension: extension,
		Function:  function,
		Args:      args,
		Caller:    caller,
	}
}

// NewCallResponse creates a new Call response
func NewCallResponse(result []string, callbacks []Callback, err error) *Message {
	msg := &Message{
		MsgType:   MsgTCall,
		Result:    result,
		Callbacks: callbacks,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewPingRequest creates a new Ping request
func NewPingRequest(extension string) *Message {
	return &Message{
		MsgType:   MsgTPing,
		Extension: extension,
	}
}

// NewPingResponse creates a new Ping response carrying the extension version
func NewPingResponse(version string, err error) *Message {
	msg := &Message{
		MsgType: MsgTPing,
	}
	if version != "" {
		msg.Result = []string{version}
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Types
// --------------------------------------------------------------------------

// MessageType is the type of Message
type MessageType uint8

const (
	MsgTUnknown MessageType = iota
	MsgTCall
	MsgTPing
	MsgTError
	MsgTSuccess
)

// String returns the string representation of the MessageType
func (t MessageType) String() string {
	switch t {
	case MsgTCall:
		return "call"
	case MsgTPing:
		return "ping"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// It encodes the MessageType as a string.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// It decodes the MessageType from a string (or its numeric value).
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		n, nErr := strconv.ParseUint(string(data), 10, 8)
		if nErr != nil {
			return err
		}
		*t = MessageType(n)
		return nil
	}

	switch s {
	case "call":
		*t = MsgTCall
	case "ping":
		*t = MsgTPing
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	case "unknown":
		*t = MsgTUnknown
	default:
		return fmt.Errorf("invalid MessageType: %s", s)
	}
	return nil
}
