package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strictpm/core/internal/application/services"
)

// NewReviewCommand creates the daily review command
func NewReviewCommand() *cobra.Command {
	var (
		date   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Generate the daily review",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			model, err := a.model(cmd.Context())
			if err != nil {
				return err
			}

			review, err := services.NewReviewService(a.tasks, model, a.location, a.logger).
				GenerateReview(cmd.Context(), date)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), review)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  completed %d/%d (%d%%)\n\n",
				review.Stats.Date, review.Stats.CompletedTasks, review.Stats.TotalTasks, review.Stats.CompletionRate)
			fmt.Fprintln(out, review.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to review (YYYY-MM-DD), defaults to today")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

// NewNewsCommand creates the daily news command
func NewNewsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "news",
		Short: "Show today's economic news",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			model, err := a.model(cmd.Context())
			if err != nil {
				return err
			}

			news, err := services.NewNewsService(a.store, model, a.location, a.logger).GetDailyNews(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), news)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, news.Headline)
			fmt.Fprintln(out, news.Summary)
			fmt.Fprintln(out, news.Insight)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
