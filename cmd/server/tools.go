package main

import (
	"encoding/json"
	"fmt"

	mcpDelivery "github.com/openfoodfacts-mcp/backend/internal/delivery/mcp"
	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the registered tools with their input schemas",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(a.registry.Capabilities(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the server version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mcpDelivery.ServerName, mcpDelivery.ServerVersion)
	},
}
