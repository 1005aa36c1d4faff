package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag string
	rootCmd = &cobra.Command{
		Use:   "wellnessctl",
		Short: "CLI client for the wellness service REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Wellness service base URL")

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check service health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(apiFlag, "/api/health", nil, os.Stdout)
		},
	}
	rootCmd.AddCommand(healthCmd)

	chatCmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send a chat message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, _ := cmd.Flags().GetString("mode")
			language, _ := cmd.Flags().GetString("language")
			return runChat(apiFlag, joinArgs(args), mode, language, os.Stdout)
		},
	}
	chatCmd.Flags().StringP("mode", "m", "", "Personality mode")
	chatCmd.Flags().StringP("language", "l", "", "Response language")
	rootCmd.AddCommand(chatCmd)

	moodCmd := &cobra.Command{
		Use:   "mood",
		Short: "Mood logging and analytics",
	}
	moodLogCmd := &cobra.Command{
		Use:   "log [value]",
		Short: "Log a mood (label like 'great' or number 1-10)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, _ := cmd.Flags().GetString("note")
			return runMoodLog(apiFlag, args[0], note, os.Stdout)
		},
	}
	moodLogCmd.Flags().StringP("note", "n", "", "Optional note")
	moodAnalyticsCmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show mood analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")
			return runGet(apiFlag, "/api/mood/analytics", map[string]string{"days": fmt.Sprint(days)}, os.Stdout)
		},
	}
	moodAnalyticsCmd.Flags().IntP("days", "d", 7, "Analysis window in days")
	moodCmd.AddCommand(moodLogCmd, moodAnalyticsCmd)
	rootCmd.AddCommand(moodCmd)

	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task management",
	}
	tasksListCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			params := map[string]string{}
			if status != "" {
				params["status"] = status
			}
			return runGet(apiFlag, "/api/tasks", params, os.Stdout)
		},
	}
	tasksListCmd.Flags().StringP("status", "s", "", "Filter by status (pending, completed)")
	tasksAddCmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, _ := cmd.Flags().GetString("priority")
			due, _ := cmd.Flags().GetString("due")
			return runTaskAdd(apiFlag, joinArgs(args), priority, due, os.Stdout)
		},
	}
	tasksAddCmd.Flags().StringP("priority", "p", "", "Priority (low, medium, high, urgent)")
	tasksAddCmd.Flags().StringP("due", "d", "", "Due date (YYYY-MM-DD)")
	tasksCmd.AddCommand(tasksListCmd, tasksAddCmd)
	rootCmd.AddCommand(tasksCmd)

	memoryCmd := &cobra.Command{
		Use:   "memory",
		Short: "Long-term memory operations",
	}
	memoryShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Show stored memories and profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(apiFlag, "/api/memory/show", nil, os.Stdout)
		},
	}
	memorySearchCmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search memories across collections",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return runSearch(apiFlag, joinArgs(args), limit, os.Stdout)
		},
	}
	memorySearchCmd.Flags().IntP("limit", "k", 5, "Number of results")
	memoryCmd.AddCommand(memoryShowCmd, memorySearchCmd)
	rootCmd.AddCommand(memoryCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
