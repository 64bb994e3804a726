package db

import (
	"fmt"

	"github.com/IDSolutions/ramdb/lib/ramdb"
	"github.com/IDSolutions/ramdb/lib/sqf"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	fetchCmd = &cobra.Command{
		Use:   "fetch [operation] [key] [params...]",
		Short: "Fetches a record and prints or forwards the decoded data",
		Long: `Fetches a record (e.g. get, hget, hgetall, lrange) and prints the decoded data.
With --fnc and --target the data is forwarded to the function on the recipient instead.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ramdb.Request{Operation: args[0], Key: args[1], Params: args[2:]}
			if target := viper.GetString("target"); target != "" {
				req.Target = &ramdb.RemoteTarget{
					Function:  viper.GetString("fnc"),
					Recipient: target,
					Mode:      ramdb.ModeExec,
				}
				if viper.GetBool("call") {
					req.Target.Mode = ramdb.ModeCall
				}
				if req.Target.Function == "" {
					return fmt.Errorf("--fnc is required with --target")
				}
			}

			data, err := dbClient.Fetch(req)
			if err != nil {
				return err
			}
			if req.Target.Remote() {
				fmt.Printf("forwarded to %s on %s (%s)\n", req.Target.Function, req.Target.Recipient, req.Target.Mode)
				return nil
			}

			// chunked results were reassembled while the call returned
			select {
			case payload := <-completed:
				data = payload
			default:
			}
			fmt.Println(sqf.MustFormat(data))
			return nil
		},
	}

	callCmd = &cobra.Command{
		Use:   "call [function] [args...]",
		Short: "Issues a raw extension call and prints the response",
		Long:  `Issues a raw extension call (e.g. set, hset, rpush, save) through the access gate and prints [result, code].`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := dbClient.Call(args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Println(sqf.MustFormat(resp))
			return nil
		},
	}

	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Prints the version of the served extension",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := rpcExtension.Ping()
			if err != nil {
				return err
			}
			fmt.Printf("%s v%s on %v\n", viper.GetString("extension"), version, rpcExtension.Endpoints())
			return nil
		},
	}
)

func init() {
	fetchCmd.Flags().String("fnc", "", "Function receiving the data")
	fetchCmd.Flags().String("target", "", "Recipient of the data (peer, group or * for all peers)")
	fetchCmd.Flags().Bool("call", false, "Invoke the function as call instead of exec")
}
