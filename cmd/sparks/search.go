package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	custom_errors "github-sparks/internal/errors"
	"github-sparks/internal/model"
)

var (
	searchStale bool
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [topic]",
	Short: "Rank rising repositories for a topic",
	Long: `Looks up repositories created in the last six months for a topic, keeps
those with more than 50 stars and orders them by Spark Score.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchStale, "stale", false, "accept stale cached results and refresh them in the background")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	topic := args[0]
	if strings.TrimSpace(topic) == "" {
		return custom_errors.ErrEmptyTopic
	}
	if searchService == nil {
		return errors.New("search service not configured")
	}

	results, err := searchService.SearchRepos(cmd.Context(), topic, searchStale)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []model.RankedRepository) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []model.RankedRepository) error {
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No results found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tREPOSITORY\tSTARS\tSCORE\tGROWTH\tLANGUAGE")
	for i, r := range results {
		lang := r.Language
		if lang == "" {
			lang = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%.1f\t%d%%\t%s\n", i+1, r.FullName, r.StargazersCount, r.SparkScore, r.GrowthPercentage, lang)
	}
	return w.Flush()
}
