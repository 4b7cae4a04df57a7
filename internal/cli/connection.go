package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cx-foundry/cxsh/internal/connstore"
)

var createBlueprint string

func init() {
	rootCmd.AddCommand(connectionCmd)
	connectionCmd.AddCommand(connectionListCmd)
	connectionCmd.AddCommand(connectionCreateCmd)
	connectionCreateCmd.Flags().StringVar(&createBlueprint, "blueprint", "", "Blueprint ID to instantiate (e.g. community/github@1.0.0)")
	connectionCreateCmd.MarkFlagRequired("blueprint")
}

var connectionCmd = &cobra.Command{
	Use:   "connection",
	Short: "Manage saved connections",
}

var connectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		defer ws.Close()

		conns := ws.Conns.List()
		if len(conns) == 0 {
			fmt.Println("No saved connections.")
			return nil
		}
		for _, c := range conns {
			fmt.Printf("%s\t%s\t%d actions\n", c.ID, c.Name, len(c.Actions))
		}
		return nil
	},
}

var connectionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a connection from a compiled blueprint",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		defer ws.Close()

		bp, ok := ws.Conns.GetBlueprint(createBlueprint)
		if !ok {
			return fmt.Errorf("blueprint %q not found; compile it first", createBlueprint)
		}
		name := connstore.BlueprintName(bp.ID)
		conn := connstore.Connection{ID: "user:" + name, Name: name, CatalogID: bp.ID}
		if err := ws.Conns.Save(conn); err != nil {
			return fmt.Errorf("save connection: %w", err)
		}
		fmt.Printf("Created connection %s\n", conn.ID)
		return nil
	},
}
