package main

import (
	"fmt"

	"github.com/aretw0/formstate/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serves form sessions over a JSON API, with Server-Sent Events per form and Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		dir, _ := cmd.Flags().GetString("definitions")

		watch, _ := cmd.Flags().GetBool("watch")
		logger := serverLogger(cmd)

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		reg, err := cli.LoadDefinitions(sigCtx, dir, watch, logger)
		if err != nil {
			return err
		}

		backend, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()

		return cli.RunServe(sigCtx, backend, fmt.Sprintf(":%s", port), reg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("definitions", "", "Directory of form definitions served under /definitions")
	serveCmd.Flags().Bool("watch", false, "Reload --definitions when a file changes")
}
