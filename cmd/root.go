package cmd

import (
	"fmt"
	"os"

	"github.com/dmcconeghy/CL-backend-assessment/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "audio-backend",
	Short: "CRUD backend for users and their audio session data.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
