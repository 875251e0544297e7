package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"pocket-budget/internal/models"
	"pocket-budget/internal/services"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <statement.csv|statement.ofx>",
		Short: "Summarize a statement file without touching the database",
		Long: `Parse a CSV or OFX/QFX statement with the same rules as the import
endpoint and print spending insights plus the achievements it would unlock.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			currency := viper.GetString("budget.currency")
			if currency == "" {
				currency = services.DefaultCurrency
			}
			return analyzeFile(cmd.OutOrStdout(), args[0], currency, asJSON)
		},
	}

	cmd.Flags().Bool("json", false, "print the raw analysis as JSON")
	cmd.Flags().String("currency", "", "ISO currency used for display (default: INR)")
	_ = viper.BindPFlag("budget.currency", cmd.Flags().Lookup("currency"))

	return cmd
}

type analysis struct {
	File    string                 `json:"file"`
	Import  *models.ImportResult   `json:"import"`
	Rewards *models.RewardsSummary `json:"rewards"`
}

func analyzeFile(w io.Writer, path, currency string, asJSON bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read statement: %w", err)
	}

	var result *models.ImportResult
	switch services.DetectImportFormat(filepath.Base(path), content) {
	case models.ImportFormatCSV:
		result, err = services.ParseTransactionsCSV(string(content), services.DefaultImportPolicy())
	case models.ImportFormatOFX:
		result, err = services.NewOFXImporter(services.NewCategoryService(), slog.Default()).Parse(content)
	default:
		return fmt.Errorf("%w: %s", services.ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	result.Insights = services.CalculateInsights(result.Transactions)
	achievements := services.EvaluateAchievements(result.Transactions, time.Now())
	out := analysis{
		File:    filepath.Base(path),
		Import:  result,
		Rewards: services.SummarizeRewards(achievements, services.FirstTransactionDate(result.Transactions)),
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return printAnalysis(w, out, services.NewCurrencyFormatter(currency))
}

func printAnalysis(w io.Writer, a analysis, formatter *services.CurrencyFormatter) error {
	insights := a.Import.Insights

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "File\t%s (%s)\n", a.File, a.Import.Format)
	fmt.Fprintf(tw, "Rows imported\t%d\n", a.Import.SuccessCount)
	fmt.Fprintf(tw, "Rows skipped\t%d\n", a.Import.ErrorCount)
	fmt.Fprintf(tw, "Total spent\t%s\n", formatter.Format(insights.TotalSpent, ""))
	fmt.Fprintf(tw, "Total income\t%s\n", formatter.Format(insights.TotalIncome, ""))
	fmt.Fprintf(tw, "Average daily spend\t%s\n", formatter.Format(insights.AverageDaily, ""))
	fmt.Fprintf(tw, "Savings rate\t%.1f%%\n", insights.SavingsRate)
	fmt.Fprintf(tw, "Top category\t%s (%s)\n", insights.TopCategory.Category, formatter.Format(insights.TopCategory.Amount, ""))
	fmt.Fprintf(tw, "Largest expense\t%s (%s)\n", insights.LargestExpense.Name, formatter.Format(insights.LargestExpense.Amount, ""))
	fmt.Fprintf(tw, "Trend\t%s\n", insights.Trend)
	fmt.Fprintf(tw, "Level\t%s (%d pts, %d/%d achievements)\n",
		a.Rewards.Level, a.Rewards.Score, a.Rewards.UnlockedCount, services.AchievementCount())
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(insights.CategoryBreakdown) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CATEGORY\tSPENT\tSHARE")
		for _, row := range insights.CategoryBreakdown {
			fmt.Fprintf(tw, "%s\t%s\t%.1f%%\n", row.Category, formatter.Format(row.Amount, ""), row.Percentage)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	for _, msg := range a.Import.Errors {
		fmt.Fprintf(w, "warning: %s\n", msg)
	}
	return nil
}
