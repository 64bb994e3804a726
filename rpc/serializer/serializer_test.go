package serializer

import (
	"github.com/IDSolutions/ramdb/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"reflect"
	"strings"
	"testing"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
	"CBOR":   NewCBORSerializer,
	"Proto":  NewProtoSerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSuccess},

		// Call request without caller
		{
			MsgType:   common.MsgTCall,
			Extension: "ArmaRAMDb",
			Function:  "hgetall",
			Args:      []string{"player_42"},
		},

		// Call request with caller and an empty argument
		{
			MsgType:   common.MsgTCall,
			Extension: "ArmaRAMDb",
			Function:  "set",
			Args:      []string{"_SP_PLAYER_", "", "[1,\"a\"\"b\"]"},
			Caller: &common.Caller{
				SteamID:             "76561198000000000",
				FileSource:          "functions\\fn_save.sqf",
				MissionName:         "Altis Life",
				ServerName:          "EU #1",
				RemoteExecutedOwner: 7,
			},
		},

		// Call response with callbacks
		{
			MsgType: common.MsgTCall,
			Result:  []string{"OK", "200"},
			Callbacks: []common.Callback{
				{Name: "ArmaRAMDb", Function: "ramdb_db_fnc_fetch", Data: `["id_hgetall", "fn", 1, 2, "[1,", false, "2"]`},
				{Name: "ArmaRAMDb", Function: "ramdb_db_fnc_fetch", Data: `["id_hgetall", "fn", 2, 2, "2]", false, "2"]`},
			},
		},

		// Ping response
		{
			MsgType: common.MsgTPing,
			Result:  []string{"1.0.0"},
		},

		// Error response
		{
			MsgType: common.MsgTError,
			Err:     "test error message",
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				data, err := serializer.Serialize(msg)
				require.NoError(t, err, "serialize message %d", i)

				var result common.Message
				require.NoError(t, serializer.Deserialize(data, &result), "deserialize message %d", i)

				if !reflect.DeepEqual(msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, msg, result)
				}
			}
		})
	}
}

// TestMessageTypes tests each message type with each serializer
func TestMessageTypes(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for msgType := common.MsgTCall; msgType <= common.MsgTSuccess; msgType++ {
				data, err := serializer.Serialize(common.Message{MsgType: msgType})
				require.NoError(t, err)

				var result common.Message
				require.NoError(t, serializer.Deserialize(data, &result))
				assert.Equal(t, msgType, result.MsgType, msgType.String())
			}
		})
	}
}

// TestDeserializeResetsMessage checks that fields of a reused message do not leak into the next one
func TestDeserializeResetsMessage(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			data, err := serializer.Serialize(common.Message{MsgType: common.MsgTPing})
			require.NoError(t, err)

			msg := common.Message{Function: "stale", Args: []string{"x"}, Err: "stale"}
			require.NoError(t, serializer.Deserialize(data, &msg))
			assert.Equal(t, common.Message{MsgType: common.MsgTPing}, msg)
		})
	}
}

// TestLargeResult checks a result of the size of a full extension buffer
func TestLargeResult(t *testing.T) {
	big := strings.Repeat("x", 20479)
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			data, err := serializer.Serialize(common.Message{MsgType: common.MsgTCall, Result: []string{big, "200"}})
			require.NoError(t, err)

			var result common.Message
			require.NoError(t, serializer.Deserialize(data, &result))
			assert.Equal(t, []string{big, "200"}, result.Result)
		})
	}
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectError: true,
		},
		{
			name:        "Too short header",
			data:        []byte{1}, // Only message type, no flags
			expectError: true,
		},
		{
			name:        "Valid header only",
			data:        []byte{1, 0}, // Message type 1, no flags
			expectError: false,
		},
		{
			name:        "Invalid length for extension",
			data:        []byte{1, hasExtension, 0, 0, 0, 5, 'a', 'b', 'c'}, // Claims length 5 but only 3 bytes provided
			expectError: true,
		},
		{
			name:        "Invalid argument count",
			data:        []byte{1, hasArgs, 0xff, 0xff, 0xff, 0xff}, // Claims 2^32-1 arguments
			expectError: true,
		},
		{
			name:        "Truncated caller",
			data:        []byte{1, hasCaller, 0, 0, 0, 0},
			expectError: true,
		},
		{
			name:        "Invalid callback count",
			data:        []byte{1, hasCallbacks, 0, 0, 0, 2, 0, 0, 0, 0},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var msg common.Message
			err := serializer.Deserialize(tc.data, &msg)

			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestInvalidProtoData tests that truncated protobuf input is rejected
func TestInvalidProtoData(t *testing.T) {
	serializer := NewProtoSerializer()

	data, err := serializer.Serialize(testMessages()[2])
	require.NoError(t, err)

	var msg common.Message
	assert.Error(t, serializer.Deserialize(data[:len(data)-3], &msg))
}
