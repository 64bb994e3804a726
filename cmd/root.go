package cmd

import (
	"fmt"
	"os"

	"github.com/IDSolutions/ramdb/cmd/db"
	"github.com/IDSolutions/ramdb/cmd/serve"
	"github.com/IDSolutions/ramdb/cmd/util"
	"github.com/IDSolutions/ramdb/lib/extension"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "ramdb",
		Short: "in-memory database for Arma 3 servers",
		Long: fmt.Sprintf(`ramdb (v%s)

An in-memory key-value, hash and list database serving the ArmaRAMDb
extension protocol, with snapshots, chunked result delivery and remote
invocation of game functions.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of ramdb",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ramdb v%s (extension v%s)\n", Version, extension.Version)
		},
	}
)

func init() {
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(db.DBCommands)
	RootCmd.AddCommand(versionCmd)

	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob, binary, cbor, proto)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
