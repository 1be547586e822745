package cmd

import (
	"fmt"

	"github.com/dmcconeghy/CL-backend-assessment/config"
	"github.com/dmcconeghy/CL-backend-assessment/db"
	"github.com/dmcconeghy/CL-backend-assessment/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Initialize the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger.Init(logger.Config{Level: cfg.LogLevel})

		conn, err := db.ConnectDB(cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := db.InitDB(conn); err != nil {
			return err
		}
		fmt.Println("Schema initialized.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
