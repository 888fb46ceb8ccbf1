package main

import (
	"github.com/aretw0/formstate/internal/cli"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <definition>",
	Short: "Edit a form interactively",
	Long: `Builds a form from a definition file and reads editing commands from stdin.

Commands:
  key=value | set key=value   change a field
  reinit key=value ...        rebase fields to new values
  save                        rebase every field to its current value
  reset                       restore every baseline
  show                        print the form again
  quit                        leave

With --json, stdin carries one JSON command per line
({"op":"set","key":"name","value":"Ada"}) and every step is printed as a JSON line.
Nothing is persisted; use 'formstate session edit' for stored sessions.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		return cli.RunEdit(cmd.Context(), cli.EditOptions{
			DefinitionPath: args[0],
			JSON:           jsonOut,
			Debug:          isDebug(cmd),
			In:             cmd.InOrStdin(),
			Out:            cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().Bool("json", false, "Speak JSON lines instead of text")
}
