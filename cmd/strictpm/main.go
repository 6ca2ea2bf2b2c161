package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/strictpm/core/cmd/strictpm/commands"
)

// @title StrictPM API
// @version 1.0
// @description Task planning with an AI assistant: tasks, daily reviews, news and chat.

// @host localhost:8080
// @BasePath /api/v1

func main() {
	rootCmd := &cobra.Command{
		Use:           "strictpm",
		Short:         "StrictPM task planner",
		Long:          `StrictPM plans daily tasks, tracks their lifecycle and lets an AI assistant add tasks, write daily reviews and fetch the day's economic news.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewTasksCommand())
	rootCmd.AddCommand(commands.NewReviewCommand())
	rootCmd.AddCommand(commands.NewNewsCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
