package server

import (
	"fmt"
	"github.com/IDSolutions/ramdb/rpc/common"
	"github.com/IDSolutions/ramdb/rpc/serializer"
	"github.com/IDSolutions/ramdb/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"os/signal"
	"runtime"
	"syscall"
	"time"
)

var Logger = logger.GetLogger("rpc")

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		config,
//		http.NewHttpServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//	s.Register("ArmaRAMDb", server.NewExtensionAdapter(host))
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *Server {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")

	return &Server{
		config:     config,
		transport:  transport,
		serializer: serializer,
		extensions: xsync.NewMapOf[string, IRPCServerAdapter](),
	}
}

// Server hosts extensions by name behind a transport
type Server struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	extensions *xsync.MapOf[string, IRPCServerAdapter]
}

// Register makes adapter reachable under name
func (s *Server) Register(name string, adapter IRPCServerAdapter) {
	s.extensions.Store(name, adapter)
	Logger.Infof("registered extension %s", name)
}

// Handle processes one serialized request. It is the handler registered with the transport.
func (s *Server) Handle(req []byte) []byte {
	start := time.Now()

	var msg common.Message
	var respMsg *common.Message

	if err := s.serializer.Deserialize(req, &msg); err != nil {
		respMsg = common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
	} else if adapter, ok := s.extensions.Load(msg.Extension); !ok {
		respMsg = common.NewErrorResponse(fmt.Sprintf("extension %q not found", msg.Extension))
	} else {
		respMsg = adapter.Handle(&msg)
	}

	metrics.GetOrCreateCounter(fmt.Sprintf(`ramdb_rpc_requests_total{type=%q}`, msg.MsgType.String())).Inc()
	if respMsg.MsgType == common.MsgTError || respMsg.Err != "" {
		metrics.GetOrCreateCounter(`ramdb_rpc_errors_total`).Inc()
	}

	val, err := s.serializer.Serialize(*respMsg)
	if err != nil {
		Logger.Errorf("failed to serialize response: %v", err)
		val, _ = s.serializer.Serialize(*common.NewErrorResponse(fmt.Sprintf("failed to serialize response: %s", err)))
	}

	metrics.GetOrCreateHistogram(`ramdb_rpc_request_duration_seconds`).UpdateDuration(start)
	return val
}

// Serve registers the handler and starts the transport layer. It blocks until Close.
func (s *Server) Serve() error {
	Logger.Infof(s.config.String())
	s.transport.RegisterHandler(s.Handle)
	return s.transport.Listen(s.config)
}

// Close stops the transport
func (s *Server) Close() error {
	return s.transport.Close()
}
