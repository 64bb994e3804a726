package serializer

import (
	"fmt"
	"github.com/IDSolutions/ramdb/rpc/common"
	"google.golang.org/protobuf/encoding/protowire"
)

// NewProtoSerializer creates a new serializer using the protobuf wire format.
// The schema is
//
//	message Message {
//	  uint32 msg_type = 1;
//	  string extension = 2;
//	  string function = 3;
//	  repeated string args = 4;
//	  Caller caller = 5;
//	  repeated string result = 6;
//	  repeated Callback callbacks = 7;
//	  string err = 8;
//	}
//	message Caller {
//	  string steam_id = 1; string file_source = 2; string mission_name = 3;
//	  string server_name = 4; int64 remote_executed_owner = 5;
//	}
//	message Callback { string name = 1; string function = 2; string data = 3; }
func NewProtoSerializer() IRPCSerializer {
	return &protoSerializerImpl{}
}

// protoSerializerImpl implements the IRPCSerializer interface using protowire
type protoSerializerImpl struct {
}

// field numbers of Message
const (
	pbMsgType   protowire.Number = 1
	pbExtension protowire.Number = 2
	pbFunction  protowire.Number = 3
	pbArgs      protowire.Number = 4
	pbCaller    protowire.Number = 5
	pbResult    protowire.Number = 6
	pbCallbacks protowire.Number = 7
	pbErr       protowire.Number = 8
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (p protoSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	var b []byte
	if msg.MsgType != common.MsgTUnknown {
		b = protowire.AppendTag(b, pbMsgType, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(msg.MsgType))
	}
	b = appendString(b, pbExtension, msg.Extension)
	b = appendString(b, pbFunction, msg.Function)
	for _, arg := range msg.Args {
		b = protowire.AppendTag(b, pbArgs, protowire.BytesType)
		b = protowire.AppendString(b, arg)
	}
	if msg.Caller != nil {
		var c []byte
		c = appendString(c, 1, msg.Caller.SteamID)
		c = appendString(c, 2, msg.Caller.FileSource)
		c = appendString(c, 3, msg.Caller.MissionName)
		c = appendString(c, 4, msg.Caller.ServerName)
		if msg.Caller.RemoteExecutedOwner != 0 {
			c = protowire.AppendTag(c, 5, protowire.VarintType)
			c = protowire.AppendVarint(c, uint64(msg.Caller.RemoteExecutedOwner))
		}
		b = protowire.AppendTag(b, pbCaller, protowire.BytesType)
		b = protowire.AppendBytes(b, c)
	}
	for _, r := range msg.Result {
		b = protowire.AppendTag(b, pbResult, protowire.BytesType)
		b = protowire.AppendString(b, r)
	}
	for _, cb := range msg.Callbacks {
		var c []byte
		c = appendString(c, 1, cb.Name)
		c = appendString(c, 2, cb.Function)
		c = appendString(c, 3, cb.Data)
		b = protowire.AppendTag(b, pbCallbacks, protowire.BytesType)
		b = protowire.AppendBytes(b, c)
	}
	b = appendString(b, pbErr, msg.Err)
	return b, nil
}

func (p protoSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	*msg = common.Message{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error {
		switch {
		case num == pbMsgType && typ == protowire.VarintType:
			msg.MsgType = common.MessageType(x)
		case num == pbExtension && typ == protowire.BytesType:
			msg.Extension = string(v)
		case num == pbFunction && typ == protowire.BytesType:
			msg.Function = string(v)
		case num == pbArgs && typ == protowire.BytesType:
			msg.Args = append(msg.Args, string(v))
		case num == pbCaller && typ == protowire.BytesType:
			caller := &common.Caller{}
			if err := consumeFields(v, func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error {
				switch num {
				case 1:
					caller.SteamID = string(v)
				case 2:
					caller.FileSource = string(v)
				case 3:
					caller.MissionName = string(v)
				case 4:
					caller.ServerName = string(v)
				case 5:
					caller.RemoteExecutedOwner = int64(x)
				}
				return nil
			}); err != nil {
				return fmt.Errorf("caller: %w", err)
			}
			msg.Caller = caller
		case num == pbResult && typ == protowire.BytesType:
			msg.Result = append(msg.Result, string(v))
		case num == pbCallbacks && typ == protowire.BytesType:
			var cb common.Callback
			if err := consumeFields(v, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
				switch num {
				case 1:
					cb.Name = string(v)
				case 2:
					cb.Function = string(v)
				case 3:
					cb.Data = string(v)
				}
				return nil
			}); err != nil {
				return fmt.Errorf("callback: %w", err)
			}
			msg.Callbacks = append(msg.Callbacks, cb)
		case num == pbErr && typ == protowire.BytesType:
			msg.Err = string(v)
		}
		return nil
	})
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// appendString appends a non-empty singular string field
func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// consumeFields walks all fields of b. Bytes fields are passed as v, varints as x.
// Other wire types are skipped.
func consumeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch typ {
		case protowire.VarintType:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			if err := fn(num, typ, nil, x); err != nil {
				return err
			}
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			if err := fn(num, typ, v, 0); err != nil {
				return err
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}
