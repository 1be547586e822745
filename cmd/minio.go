package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dmcconeghy/CL-backend-assessment/config"
	"github.com/dmcconeghy/CL-backend-assessment/logger"
	"github.com/dmcconeghy/CL-backend-assessment/storage"

	"github.com/spf13/cobra"
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Check the MinIO connection and image bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger.Init(logger.Config{Level: cfg.LogLevel})

		images, err := storage.NewImageStore(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := images.Ping(ctx); err != nil {
			return err
		}

		fmt.Printf("MinIO connection OK (bucket %s)\n", cfg.MinioBucket)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)
}
