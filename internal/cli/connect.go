package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var connectAs string

func init() {
	rootCmd.AddCommand(connectCmd)
	connectCmd.Flags().StringVar(&connectAs, "as", "", "Alias to bind the connection under")
	connectCmd.MarkFlagRequired("as")
}

var connectCmd = &cobra.Command{
	Use:   "connect <source>",
	Short: "Verify a connection and bind it under an alias",
	Long:  "Binds a saved connection (e.g. user:github) under a session alias. Aliases last for one session; in one-shot use this verifies the connection exists.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		defer ws.Close()

		source := args[0]
		if _, ok := ws.Conns.Get(source); !ok {
			return fmt.Errorf("connection %q not found", source)
		}
		ws.Sess.Connections[connectAs] = source
		fmt.Printf("Connection %q is now active as %q.\n", source, connectAs)
		return nil
	},
}
