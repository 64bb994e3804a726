package common

import (
	"encoding/json"
	"testing"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageTypeJSON(t *testing.T) {
	b, err := json.Marshal(NewCallRequest("ArmaRAMDb", "get", []string{"k"}, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"msg_type":"call","extension":"ArmaRAMDb","function":"get","args":["k"]}`, string(b))

	var msg Message
	require.NoError(t, json.Unmarshal([]byte(`{"msg_type":"ping"}`), &msg))
	assert.Equal(t, MsgTPing, msg.MsgType)

	require.NoError(t, json.Unmarshal([]byte(`{"msg_type":1}`), &msg))
	assert.Equal(t, MsgTCall, msg.MsgType)

	assert.Error(t, json.Unmarshal([]byte(`{"msg_type":"bogus"}`), &msg))
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]logger.LogLevel{
		"debug": logger.DEBUG, "INFO": logger.INFO, "warn": logger.WARNING, "warning": logger.WARNING, "error": logger.ERROR,
	} {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLogLevel("loud")
	assert.Error(t, err)
}

func TestConfigString(t *testing.T) {
	c := ServerConfig{TimeoutSecond: 5, LogLevel: "info", MetricsEndpoint: ":9100"}
	c.Transport.Endpoint = "0.0.0.0:8080"
	c.Extension.Name = "ArmaRAMDb"
	c.Persistence.AutoBackup = true
	c.Persistence.BackupFrequencyMin = 30

	s := c.String()
	assert.Contains(t, s, "0.0.0.0:8080")
	assert.Contains(t, s, "every 30 min")
	assert.Contains(t, s, ":9100")
	assert.Contains(t, s, "Remote Receiver")

	cc := ClientConfig{Extension: "ArmaRAMDb"}
	cc.Transport.Endpoints = []string{"a:1", "b:2"}
	assert.Contains(t, cc.String(), "b:2")
}
