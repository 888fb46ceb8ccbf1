package main

import (
	"github.com/aretw0/formstate/internal/cli"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored form sessions",
	Long:  `Create, edit, inspect and remove form sessions in the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored sessions",
	Args:  cobra.NoArgs,
	RunE: withSessions(func(cmd *cobra.Command, s *cli.Sessions, args []string) error {
		return s.List(cmd.Context())
	}),
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create <definition>",
	Short: "Create a session from a form definition",
	Args:  cobra.ExactArgs(1),
	RunE: withSessions(func(cmd *cobra.Command, s *cli.Sessions, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		return s.Create(cmd.Context(), args[0], id)
	}),
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: withSessions(func(cmd *cobra.Command, s *cli.Sessions, args []string) error {
		return s.Inspect(cmd.Context(), args[0])
	}),
}

var sessionSetCmd = &cobra.Command{
	Use:   "set <session-id> <key=value>...",
	Short: "Change field values of a session",
	Args:  cobra.MinimumNArgs(2),
	RunE: withSessions(func(cmd *cobra.Command, s *cli.Sessions, args []string) error {
		return s.Set(cmd.Context(), args[0], args[1:])
	}),
}

var sessionReinitCmd = &cobra.Command{
	Use:   "reinit <session-id> <key=value>...",
	Short: "Rebase field values of a session (e.g. after the record was saved)",
	Args:  cobra.MinimumNArgs(2),
	RunE: withSessions(func(cmd *cobra.Command, s *cli.Sessions, args []string) error {
		return s.Reinitialize(cmd.Context(), args[0], args[1:])
	}),
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset <session-id>",
	Short: "Reset every field of a session to its baseline",
	Args:  cobra.ExactArgs(1),
	RunE: withSessions(func(cmd *cobra.Command, s *cli.Sessions, args []string) error {
		return s.Reset(cmd.Context(), args[0])
	}),
}

var sessionEditCmd = &cobra.Command{
	Use:   "edit <session-id>",
	Short: "Edit a session interactively, persisting every step",
	Long:  `Reads editing commands from stdin (see 'formstate edit --help') and applies each one to the stored session.`,
	Args:  cobra.ExactArgs(1),
	RunE: withSessions(func(cmd *cobra.Command, s *cli.Sessions, args []string) error {
		return s.Edit(cmd.Context(), args[0], cmd.InOrStdin())
	}),
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: withSessions(func(cmd *cobra.Command, s *cli.Sessions, args []string) error {
		return s.Remove(cmd.Context(), args)
	}),
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.PersistentFlags().Bool("json", false, "Print JSON instead of tables")
	sessionCreateCmd.Flags().String("id", "", "Session ID (default: random UUID)")

	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionCreateCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionSetCmd)
	sessionCmd.AddCommand(sessionReinitCmd)
	sessionCmd.AddCommand(sessionResetCmd)
	sessionCmd.AddCommand(sessionEditCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}

// withSessions opens the configured backend around a session subcommand.
func withSessions(run func(cmd *cobra.Command, s *cli.Sessions, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		backend, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()

		jsonOut, _ := cmd.Flags().GetBool("json")
		return run(cmd, cli.NewSessions(backend, cmd.OutOrStdout(), isDebug(cmd), jsonOut), args)
	}
}
