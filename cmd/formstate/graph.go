package main

import (
	"github.com/aretw0/formstate/internal/cli"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <definition>",
	Short: "Export the form as a Mermaid diagram",
	Long: `Draws every field with an edge into the dirty and saveable flags it takes part in.
With --set the resulting state is highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sets, _ := cmd.Flags().GetStringArray("set")
		return cli.RunGraph(cmd.Context(), cmd.OutOrStdout(), args[0], sets)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringArray("set", nil, "Change a field value before drawing (key=value, repeatable)")
}
