package cmd

import (
	"fmt"

	"github.com/dmcconeghy/CL-backend-assessment/config"
	"github.com/dmcconeghy/CL-backend-assessment/db"
	"github.com/dmcconeghy/CL-backend-assessment/logger"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Check the Redis connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger.Init(logger.Config{Level: cfg.LogLevel})

		client, err := db.ConnectRedis(cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		fmt.Printf("Redis connection OK (%s:%s)\n", cfg.RedisHost, cfg.RedisPort)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
