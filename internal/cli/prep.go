package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/careerflow/careerflow-cli/internal/app"
	"github.com/careerflow/careerflow-cli/internal/store"
)

func init() {
	rootCmd.AddCommand(companiesCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(roadmapCmd)
	rootCmd.AddCommand(mockCmd)
	rootCmd.AddCommand(scoreResumeCmd)
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(setNameCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyDeleteCmd)

	companiesCmd.Flags().String("category", "All", "Filter by category (All, Service, Product)")
	roadmapCmd.Flags().String("tab", "process", "Tab to show (process, questions, mock)")
	roadmapCmd.Flags().Int("expand", -1, "Question index to expand (questions tab)")
	roadmapCmd.Flags().Bool("more", false, "Fetch an extra batch of questions")
	mockCmd.Flags().String("answers", "", "Comma-separated option indexes (e.g. 1,0,2)")
	historyCmd.Flags().String("company", "", "Only show records for this company")
}

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List companies on the dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		category, _ := cmd.Flags().GetString("category")
		if err := a.controller.SetCategoryFilter(category); err != nil {
			return err
		}
		return a.render(cmd)
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <prefix>",
	Short: "Show typeahead suggestions for a company name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		a.controller.Typeahead(args[0])
		return a.render(cmd)
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Ask the interview assistant a free-form question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		if err := a.controller.Search(ctx, strings.Join(args, " ")); err != nil {
			return err
		}
		return a.render(cmd)
	},
}

var roadmapCmd = &cobra.Command{
	Use:   "roadmap <company>",
	Short: "Show preparation details for a company",
	Long: `Roadmap loads the company's preparation data and shows the selected
tab: the week-by-week process, the question bank, or a mock test.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		if err := a.controller.SelectCompany(ctx, args[0]); err != nil {
			return err
		}

		tabName, _ := cmd.Flags().GetString("tab")
		tab := app.Tab(strings.ToLower(tabName))
		if tab != app.TabProcess {
			if err := a.controller.SwitchTab(ctx, tab); err != nil {
				return err
			}
		}
		if more, _ := cmd.Flags().GetBool("more"); more && tab == app.TabQuestions {
			if err := a.controller.LoadMoreQuestions(ctx); err != nil {
				return err
			}
		}
		if expand, _ := cmd.Flags().GetInt("expand"); expand >= 0 {
			a.controller.ToggleQuestion(expand)
		}
		return a.render(cmd)
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock <company>",
	Short: "Take a mock test for a company",
	Long: `Mock generates a quiz for the company, applies the answers given with
--answers and prints the result. Without --answers it prints the
unanswered quiz.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		if err := a.controller.SelectCompany(ctx, args[0]); err != nil {
			return err
		}
		if err := a.controller.SwitchTab(ctx, app.TabMock); err != nil {
			return err
		}

		raw, _ := cmd.Flags().GetString("answers")
		if raw != "" {
			answers, err := parseAnswers(raw)
			if err != nil {
				return err
			}
			for i, opt := range answers {
				a.controller.SelectMockAnswer(i, opt)
			}
		}
		return a.render(cmd)
	},
}

var scoreResumeCmd = &cobra.Command{
	Use:   "score-resume <file.pdf>",
	Short: "Score a resume against ATS criteria",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		path := args[0]
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("cannot read resume file %q: %w", path, err)
		}
		a.controller.SelectResumeFile(filepath.Base(path), path)
		if err := a.controller.RunAudit(ctx); err != nil {
			return err
		}
		return a.render(cmd)
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage account settings",
}

var setNameCmd = &cobra.Command{
	Use:   "set-name <name...>",
	Short: "Update the display name on the account",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		a.controller.OpenSettings()
		if err := a.controller.SubmitProfileUpdate(ctx, strings.Join(args, " ")); err != nil {
			return err
		}
		return a.render(cmd)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show saved activity records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		company, _ := cmd.Flags().GetString("company")
		records, err := listHistory(ctx, a, company)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No activity recorded yet.")
			return nil
		}
		for _, rec := range records {
			line := fmt.Sprintf("%s  %s  %-12s", rec.ID, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Kind)
			if rec.Company != "" {
				line += "  " + rec.Company
			}
			if rec.Score > 0 {
				line += fmt.Sprintf("  score=%.0f", rec.Score)
			}
			if rec.Grade != "" {
				line += "  grade=" + rec.Grade
			}
			fmt.Println(line)
		}
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an activity record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		if err := a.history.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	},
}

func listHistory(ctx context.Context, a *appContext, company string) ([]*store.Record, error) {
	if company != "" {
		return a.history.ListByCompany(ctx, company)
	}
	return a.history.List(ctx)
}

func parseAnswers(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid answer index %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
