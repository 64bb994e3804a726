package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Socket options shared by the tcp and unix transports
// --------------------------------------------------------------------------

// SocketConf holds socket buffer sizes in bytes. 0 keeps the OS default.
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific socket options.
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	// TCPLingerSec <= 0 keeps the OS default
	TCPLingerSec int
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerTransportConfig configures the listening side of a transport.
type ServerTransportConfig struct {
	// Endpoint is the listen address (host:port or a socket path)
	Endpoint string
	// WorkersPerConnection limits concurrent requests per connection (tcp, unix)
	WorkersPerConnection int
	// BufferSize is the size of pooled read buffers in bytes (tcp, unix)
	BufferSize int
	SocketConf
	TCPConf
}

// ExtensionConfig configures the hosted extension.
type ExtensionConfig struct {
	// Name under which the extension is reachable
	Name string
	// BufferSize is the output buffer of the extension in bytes
	BufferSize int
	// ContextLog logs every caller context
	ContextLog bool
}

// PersistenceConfig configures snapshots and backups.
type PersistenceConfig struct {
	DataDir            string
	File               string
	BackupDir          string
	AutoBackup         bool
	BackupFrequencyMin int
	MaxBackups         int
}

// ServerConfig holds all configuration parameters of the ramdb server.
type ServerConfig struct {
	Transport ServerTransportConfig

	// request timeout
	TimeoutSecond int64

	// Logging configuration
	LogLevel string

	Extension   ExtensionConfig
	Persistence PersistenceConfig

	// MetricsEndpoint serves /metrics when set
	MetricsEndpoint string

	// RemoteEndpoint serves the remote invocation receiver when set
	RemoteEndpoint string
	// PeersFile is the YAML peer table used for outgoing remote invocations
	PeersFile string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	orDisabled := func(v string) string {
		if v == "" {
			return "disabled"
		}
		return v
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Workers Per Conn", strconv.Itoa(int(math.Max(1, float64(c.Transport.WorkersPerConnection)))))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	// Extension
	addSection("Extension")
	addField("Name", c.Extension.Name)
	addField("Buffer Size", fmt.Sprintf("%d bytes", c.Extension.BufferSize))
	addField("Context Log", strconv.FormatBool(c.Extension.ContextLog))

	// Storage
	addSection("Storage")
	addField("Data Directory", c.Persistence.DataDir)
	addField("Data File", c.Persistence.File)
	addField("Backup Directory", c.Persistence.BackupDir)
	if c.Persistence.AutoBackup {
		addField("Auto Backup", fmt.Sprintf("every %d min", c.Persistence.BackupFrequencyMin))
	} else {
		addField("Auto Backup", "disabled")
	}
	addField("Max Backups", strconv.Itoa(c.Persistence.MaxBackups))

	// Side services
	addSection("Services")
	addField("Metrics", orDisabled(c.MetricsEndpoint))
	addField("Remote Receiver", orDisabled(c.RemoteEndpoint))
	addField("Peers File", orDisabled(c.PeersFile))

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientTransportConfig configures the dialing side of a transport.
type ClientTransportConfig struct {
	Endpoints              []string
	RetryCount             int
	ConnectionsPerEndpoint int
	SocketConf
	TCPConf
}

// ClientConfig configures an RPC extension client.
type ClientConfig struct {
	// Extension is the name of the remote extension
	Extension     string
	TimeoutSecond int
	Transport     ClientTransportConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Extension", c.Extension)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.Transport.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(int(math.Max(1, float64(c.Transport.ConnectionsPerEndpoint)))))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Transport.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
