package main

import (
	"github.com/aretw0/formstate"
	"github.com/aretw0/formstate/internal/cli"
	"github.com/aretw0/formstate/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <definition>",
	Short: "Evaluate a form definition",
	Long: `Builds a form from a definition file, applies the requested transitions and
prints every field with the derived dirty and saveable flags.

Transitions run in this order: --reinit, then each --set, then --reset.
Values are JSON scalars (42, true, null, "quoted") or plain strings.`,
	Example: `  formstate inspect profile.yaml --set name=Ada --set age=36
  formstate inspect profile.yaml --reinit name=Ada --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sets, _ := cmd.Flags().GetStringArray("set")
		reinit, _ := cmd.Flags().GetStringArray("reinit")
		reset, _ := cmd.Flags().GetBool("reset")
		jsonOut, _ := cmd.Flags().GetBool("json")

		out := cmd.OutOrStdout()
		if !jsonOut && cli.IsTerminal(out) {
			tui.PrintBanner(out, formstate.Version)
		}

		return cli.RunInspect(cmd.Context(), cli.InspectOptions{
			DefinitionPath: args[0],
			Reinitialize:   reinit,
			Set:            sets,
			Reset:          reset,
			JSON:           jsonOut,
			Debug:          isDebug(cmd),
			Out:            out,
		})
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringArray("set", nil, "Change a field value (key=value, repeatable)")
	inspectCmd.Flags().StringArray("reinit", nil, "Rebase a field to a new value (key=value, repeatable)")
	inspectCmd.Flags().Bool("reset", false, "Reset every field to its baseline at the end")
	inspectCmd.Flags().Bool("json", false, "Print JSON instead of a table")
}
