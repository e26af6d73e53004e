// cmd/sparks/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github-sparks/internal/app"
	"github-sparks/internal/config"
	"github-sparks/internal/model"
)

// searcher resolves ranked repositories for a topic.
type searcher interface {
	SearchRepos(ctx context.Context, topic string, allowStale bool) ([]model.RankedRepository, error)
}

// sweeper removes expired persistent cache entries.
type sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// Services used by the commands. They are built from the environment on
// first use unless already set.
var (
	searchService searcher
	sweepService  sweeper
	application   *app.App
)

var rootCmd = &cobra.Command{
	Use:   "sparks",
	Short: "Find fast-rising GitHub repositories for a topic",
	Long: `Searches GitHub for recently created repositories on a topic and ranks
them by Spark Score. Results are cached in memory and in the configured store.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupServices,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application != nil {
			application.Close()
			application = nil
		}
	},
}

func setupServices(cmd *cobra.Command, args []string) error {
	if searchService != nil && sweepService != nil {
		return nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := app.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	application = a
	searchService = a.Service
	sweepService = a.Persistent
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
