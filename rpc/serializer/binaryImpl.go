package serializer

import (
	"encoding/binary"
	"fmt"
	"github.com/IDSolutions/ramdb/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasExtension byte = 1 << 0
	hasFunction  byte = 1 << 1
	hasArgs      byte = 1 << 2
	hasCaller    byte = 1 << 3
	hasResult    byte = 1 << 4
	hasCallbacks byte = 1 << 5
	hasErr       byte = 1 << 6
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Calculate total size needed
	result := make([]byte, b.sizeBytes(msg))

	// Write message type
	result[0] = byte(msg.MsgType)

	// Initialize flags byte
	var flags byte = 0

	// Start after MsgType and flags
	pos := 2

	if msg.Extension != "" {
		flags |= hasExtension
		pos = putString(result, pos, msg.Extension)
	}

	if msg.Function != "" {
		flags |= hasFunction
		pos = putString(result, pos, msg.Function)
	}

	if len(msg.Args) > 0 {
		flags |= hasArgs
		pos = putStrings(result, pos, msg.Args)
	}

	if msg.Caller != nil {
		flags |= hasCaller
		pos = putString(result, pos, msg.Caller.SteamID)
		pos = putString(result, pos, msg.Caller.FileSource)
		pos = putString(result, pos, msg.Caller.MissionName)
		pos = putString(result, pos, msg.Caller.ServerName)
		binary.BigEndian.PutUint64(result[pos:pos+8], uint64(msg.Caller.RemoteExecutedOwner))
		pos += 8
	}

	if len(msg.Result) > 0 {
		flags |= hasResult
		pos = putStrings(result, pos, msg.Result)
	}

	if len(msg.Callbacks) > 0 {
		flags |= hasCallbacks
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(msg.Callbacks)))
		pos += 4
		for _, cb := range msg.Callbacks {
			pos = putString(result, pos, cb.Name)
			pos = putString(result, pos, cb.Function)
			pos = putString(result, pos, cb.Data)
		}
	}

	if msg.Err != "" {
		flags |= hasErr
		pos = putString(result, pos, msg.Err)
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	r := binaryReader{data: data, pos: 2}
	flags := data[1]

	*msg = common.Message{MsgType: common.MessageType(data[0])}

	if flags&hasExtension != 0 {
		msg.Extension = r.string("extension")
	}
	if flags&hasFunction != 0 {
		msg.Function = r.string("function")
	}
	if flags&hasArgs != 0 {
		msg.Args = r.strings("args")
	}
	if flags&hasCaller != 0 {
		caller := &common.Caller{
			SteamID:     r.string("caller steam id"),
			FileSource:  r.string("caller file source"),
			MissionName: r.string("caller mission name"),
			ServerName:  r.string("caller server name"),
		}
		caller.RemoteExecutedOwner = int64(r.uint64("caller owner"))
		msg.Caller = caller
	}
	if flags&hasResult != 0 {
		msg.Result = r.strings("result")
	}
	if flags&hasCallbacks != 0 {
		n := r.uint32("callback count")
		if r.err == nil && uint64(n)*12 > uint64(len(data)-r.pos) {
			return fmt.Errorf("data too short for %d callbacks", n)
		}
		if r.err == nil {
			msg.Callbacks = make([]common.Callback, n)
			for i := range msg.Callbacks {
				msg.Callbacks[i] = common.Callback{
					Name:     r.string("callback name"),
					Function: r.string("callback function"),
					Data:     r.string("callback data"),
				}
			}
		}
	}
	if flags&hasErr != 0 {
		msg.Err = r.string("error")
	}

	return r.err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2

	// every string is a 4 byte length + data
	if msg.Extension != "" {
		size += 4 + len(msg.Extension)
	}
	if msg.Function != "" {
		size += 4 + len(msg.Function)
	}
	if len(msg.Args) > 0 {
		size += sizeStrings(msg.Args)
	}
	if msg.Caller != nil {
		size += 16 + len(msg.Caller.SteamID) + len(msg.Caller.FileSource) +
			len(msg.Caller.MissionName) + len(msg.Caller.ServerName) + 8
	}
	if len(msg.Result) > 0 {
		size += sizeStrings(msg.Result)
	}
	if len(msg.Callbacks) > 0 {
		size += 4
		for _, cb := range msg.Callbacks {
			size += 12 + len(cb.Name) + len(cb.Function) + len(cb.Data)
		}
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}

	return size
}

func sizeStrings(list []string) int {
	size := 4
	for _, s := range list {
		size += 4 + len(s)
	}
	return size
}

func putString(buf []byte, pos int, s string) int {
	binary.BigEndian.PutUint32(buf[pos:pos+4], uint32(len(s)))
	pos += 4
	return pos + copy(buf[pos:], s)
}

func putStrings(buf []byte, pos int, list []string) int {
	binary.BigEndian.PutUint32(buf[pos:pos+4], uint32(len(list)))
	pos += 4
	for _, s := range list {
		pos = putString(buf, pos, s)
	}
	return pos
}

// binaryReader reads length prefixed fields and keeps the first error
type binaryReader struct {
	data []byte
	pos  int
	err  error
}

func (r *binaryReader) need(n int, field string) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = fmt.Errorf("data too short for %s", field)
		return false
	}
	return true
}

func (r *binaryReader) uint32(field string) uint32 {
	if !r.need(4, field) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v
}

func (r *binaryReader) uint64(field string) uint64 {
	if !r.need(8, field) {
		return 0
	}
	v := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return v
}

func (r *binaryReader) string(field string) string {
	n := int(r.uint32(field + " length"))
	if !r.need(n, field) {
		return ""
	}
	s := string(r.data[r.pos : r.pos+n])
	r.pos += n
	return s
}

func (r *binaryReader) strings(field string) []string {
	n := r.uint32(field + " count")
	if r.err != nil {
		return nil
	}
	// every element needs at least its length prefix
	if uint64(n)*4 > uint64(len(r.data)-r.pos) {
		r.err = fmt.Errorf("data too short for %d %s", n, field)
		return nil
	}
	list := make([]string, n)
	for i := range list {
		list[i] = r.string(field)
	}
	return list
}
