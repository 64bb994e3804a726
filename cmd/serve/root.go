package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cmdUtil "github.com/IDSolutions/ramdb/cmd/util"
	"github.com/IDSolutions/ramdb/lib/extension"
	"github.com/IDSolutions/ramdb/lib/ramdb"
	"github.com/IDSolutions/ramdb/lib/remote"
	"github.com/IDSolutions/ramdb/lib/sqf"
	"github.com/IDSolutions/ramdb/lib/store"
	"github.com/IDSolutions/ramdb/lib/store/memstore"
	"github.com/IDSolutions/ramdb/rpc/common"
	"github.com/IDSolutions/ramdb/rpc/server"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log = logger.GetLogger("ramdb")

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the ramdb server",
		Long:    `Start the ramdb server hosting the ArmaRAMDb extension. The configuration can be set via command line flags or environment variables. The format of the environment variables is RAMDB_<flag> (e.g. RAMDB_DATA_DIR=/srv/ramdb)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	cobra.OnInitialize(cmdUtil.InitConfig)

	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen (e.g. localhost:8080, /tmp/ramdb.sock, ...)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Timeout in seconds"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "workers-per-conn"
	ServeCmd.PersistentFlags().Int(key, 1, cmdUtil.WrapString("Concurrent requests per connection (tcp, unix). Calls are serialized per extension either way"))

	key = "transport-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Size of the pooled read buffers in KB (tcp, unix). 0 selects the transport default"))

	key = "extension"
	ServeCmd.PersistentFlags().String(key, ramdb.CallbackName, cmdUtil.WrapString("Name under which the extension is served"))

	key = "output-buffer"
	ServeCmd.PersistentFlags().Int(key, extension.DefaultBufferSize, cmdUtil.WrapString("Output buffer of the extension in bytes. Larger results are sent in chunks"))

	key = "context-log"
	ServeCmd.PersistentFlags().Bool(key, false, cmdUtil.WrapString("Log the caller context of every call"))

	key = "data-dir"
	ServeCmd.PersistentFlags().String(key, "@ramdb", cmdUtil.WrapString("Directory of the snapshot file"))

	key = "data-file"
	ServeCmd.PersistentFlags().String(key, "data.rdb.gz", cmdUtil.WrapString("Snapshot file name. The suffix selects the compression (.gz or .zst)"))

	key = "backup-dir"
	ServeCmd.PersistentFlags().String(key, "backups", cmdUtil.WrapString("Directory of timestamped backups, relative to data-dir"))

	key = "auto-backup"
	ServeCmd.PersistentFlags().Bool(key, false, cmdUtil.WrapString("Write backups periodically"))

	key = "backup-frequency"
	ServeCmd.PersistentFlags().Int(key, 60, cmdUtil.WrapString("Minutes between automatic backups"))

	key = "max-backups"
	ServeCmd.PersistentFlags().Int(key, 10, cmdUtil.WrapString("Number of backups to keep (0 keeps all)"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Address serving /metrics in prometheus format (disabled when empty)"))

	key = "remote-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Address of the remote invocation receiver (disabled when empty)"))

	key = "peers"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("YAML peer table used to forward reassembled payloads"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig.Transport.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.Transport.WorkersPerConnection = viper.GetInt("workers-per-conn")
	serveCmdConfig.Transport.BufferSize = viper.GetInt("transport-buffer") * 1024
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	serveCmdConfig.Extension = common.ExtensionConfig{
		Name:       viper.GetString("extension"),
		BufferSize: viper.GetInt("output-buffer"),
		ContextLog: viper.GetBool("context-log"),
	}
	if serveCmdConfig.Extension.Name == "" {
		return fmt.Errorf("extension name must not be empty")
	}

	serveCmdConfig.Persistence = common.PersistenceConfig{
		DataDir:            viper.GetString("data-dir"),
		File:               viper.GetString("data-file"),
		BackupDir:          viper.GetString("backup-dir"),
		AutoBackup:         viper.GetBool("auto-backup"),
		BackupFrequencyMin: viper.GetInt("backup-frequency"),
		MaxBackups:         viper.GetInt("max-backups"),
	}
	if serveCmdConfig.Persistence.AutoBackup && serveCmdConfig.Persistence.BackupFrequencyMin <= 0 {
		return fmt.Errorf("backup-frequency must be positive when auto-backup is enabled")
	}

	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.RemoteEndpoint = viper.GetString("remote-endpoint")
	serveCmdConfig.PeersFile = viper.GetString("peers")

	return common.InitLoggers(serveCmdConfig.LogLevel)
}

// run starts the ramdb server and blocks until it is stopped
func run(_ *cobra.Command, _ []string) error {
	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}
	t, err := cmdUtil.GetServerTransport()
	if err != nil {
		return err
	}

	// storage
	data := memstore.NewMemStore()
	persister := store.NewPersister(data, persistConfig(serveCmdConfig.Persistence))
	if loaded, err := persister.LoadExisting(); err != nil {
		return fmt.Errorf("failed to load %s: %w", persister.Path(), err)
	} else if loaded {
		log.Infof("loaded data from %s", persister.Path())
	}
	persister.StartAutoBackup()

	host := extension.NewHost(data, persister, extension.Config{
		BufferSize: serveCmdConfig.Extension.BufferSize,
		ContextLog: serveCmdConfig.Extension.ContextLog,
	})

	srv := server.NewRPCServer(*serveCmdConfig, t, s)
	srv.Register(serveCmdConfig.Extension.Name, server.NewExtensionAdapter(host))

	// side services
	var side []*http.Server
	if serveCmdConfig.MetricsEndpoint != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, _ *http.Request) {
			metrics.WritePrometheus(w, true)
		})
		side = append(side, startSide("metrics", serveCmdConfig.MetricsEndpoint, mux))
	}

	var invoker cmdUtil.Invoker
	if serveCmdConfig.RemoteEndpoint != "" {
		reg := remote.NewRegistry()
		invoker, err = cmdUtil.NewInvoker(serveCmdConfig.PeersFile, reg, time.Duration(serveCmdConfig.TimeoutSecond)*time.Second)
		if err != nil {
			return err
		}
		bindFunctions(reg, ramdb.NewAssembler(ramdb.NewDispatcher(invoker), 0))

		receiver := remote.NewReceiver(reg, remote.ReceiverConfig{ExecTimeout: time.Duration(serveCmdConfig.TimeoutSecond) * time.Second})
		side = append(side, startSide("remote receiver", serveCmdConfig.RemoteEndpoint, receiver))
	}

	// graceful shutdown
	done := make(chan error, 1)
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		log.Infof("received %s, shutting down", <-sig)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, hs := range side {
			_ = hs.Shutdown(ctx)
		}
		if invoker != nil {
			_ = invoker.Close()
		}
		err := srv.Close()
		done <- errors.Join(err, persister.Close())
	}()

	if err := srv.Serve(); err != nil {
		return err
	}
	return <-done
}

// bindFunctions registers the functions the remote receiver of the server offers
func bindFunctions(reg *remote.Registry, assembler *ramdb.Assembler) {
	// frames forwarded by game peers
	reg.Bind(ramdb.CallbackFunction, func(_ context.Context, data any) (any, error) {
		frame, err := sqf.Format(data)
		if err != nil {
			return nil, err
		}
		return nil, assembler.Feed(frame)
	})
	assembler.OnComplete(func(id, function string, data any) {
		log.Infof("transfer %s for %s complete: %s", id, function, sqf.MustFormat(data))
	})

	reg.Bind("ramdb_fnc_log", func(_ context.Context, data any) (any, error) {
		log.Infof("remote payload: %s", sqf.MustFormat(data))
		return true, nil
	})
}

func persistConfig(c common.PersistenceConfig) store.PersistConfig {
	cfg := store.PersistConfig{
		Dir:        c.DataDir,
		File:       c.File,
		BackupDir:  c.BackupDir,
		MaxBackups: c.MaxBackups,
	}
	if c.AutoBackup {
		cfg.BackupInterval = time.Duration(c.BackupFrequencyMin) * time.Minute
	}
	return cfg
}

func startSide(name, addr string, h http.Handler) *http.Server {
	hs := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Infof("%s listening on %s", name, addr)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("%s stopped: %v", name, err)
		}
	}()
	return hs
}
