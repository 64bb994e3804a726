package db

import (
	"context"
	"fmt"
	"time"

	"github.com/IDSolutions/ramdb/cmd/util"
	"github.com/IDSolutions/ramdb/lib/ramdb"
	"github.com/IDSolutions/ramdb/lib/remote"
	"github.com/IDSolutions/ramdb/lib/sqf"
	"github.com/IDSolutions/ramdb/rpc/client"
	"github.com/IDSolutions/ramdb/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Logger = logger.GetLogger("ramdb")

var (
	rpcExtension *client.RPCExtension
	invoker      util.Invoker
	dbClient     *ramdb.Client
	assembler    *ramdb.Assembler

	// completed receives payloads of chunked transfers without remote entity
	completed = make(chan any, 1)

	// DBCommands represents the db command group
	DBCommands = &cobra.Command{
		Use:                "db",
		Short:              "Access the data of a ramdb server",
		PersistentPreRunE:  setupDBClient,
		PersistentPostRunE: closeDBClient,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	util.SetupRPCClientFlags(DBCommands)

	DBCommands.PersistentFlags().String("steam-id", "", util.WrapString("Player id sent as caller context, resolves the _SP_PLAYER_ key placeholder"))

	DBCommands.AddCommand(fetchCmd)
	DBCommands.AddCommand(callCmd)
	DBCommands.AddCommand(pingCmd)
	DBCommands.AddCommand(perfTestCmd)
}

// setupDBClient connects the extension client and wires the core protocol to it
func setupDBClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	config := util.GetClientConfig()

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}
	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	rpcExtension, err = client.NewRPCExtension(*config, t, s)
	if err != nil {
		return err
	}
	if id := viper.GetString("steam-id"); id != "" {
		rpcExtension.SetCaller(&common.Caller{SteamID: id})
	}

	// functions bound in this process, used when no peer table is given
	reg := remote.NewRegistry()
	reg.Bind("ramdb_fnc_print", func(_ context.Context, data any) (any, error) {
		fmt.Printf("remote payload: %s\n", sqf.MustFormat(data))
		return true, nil
	})

	invoker, err = util.NewInvoker(viper.GetString("peers"), reg, time.Duration(config.TimeoutSecond)*time.Second)
	if err != nil {
		return err
	}

	dbClient = ramdb.NewClient(rpcExtension, invoker, nil)
	assembler = ramdb.NewAssembler(dbClient.Dispatcher(), 0)
	assembler.OnComplete(func(_ string, _ string, data any) {
		select {
		case completed <- data:
		default:
		}
	})
	dbClient.RegisterCallback(assembler.Callback())
	return nil
}

func closeDBClient(_ *cobra.Command, _ []string) error {
	if invoker != nil {
		_ = invoker.Close()
	}
	if rpcExtension != nil {
		return rpcExtension.Close()
	}
	return nil
}
