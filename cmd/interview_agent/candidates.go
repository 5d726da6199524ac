package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/archive"
	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/observability"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Print the archive of finished candidates",
	Long:  "Print archived candidates from the configured storage, highest total score first unless another order is asked for.",
	RunE:  runCandidates,
}

var (
	candidatesSearch string
	candidatesSort   string
	candidatesAsc    bool
)

func init() {
	candidatesCmd.Flags().StringVarP(&candidatesSearch, "search", "s", "", "Only candidates whose name contains this text")
	candidatesCmd.Flags().StringVar(&candidatesSort, "sort", string(archive.SortByTotalScore), "Sort key: totalScore or name")
	candidatesCmd.Flags().BoolVar(&candidatesAsc, "asc", false, "Sort ascending")

	rootCmd.AddCommand(candidatesCmd)
}

// candidateQuery builds an archive query from the command flags.
func candidateQuery(search, sortBy string, asc bool) (archive.Query, error) {
	key := archive.SortKey(sortBy)
	if key != archive.SortByTotalScore && key != archive.SortByName {
		return archive.Query{}, fmt.Errorf("--sort must be %s or %s, got %q", archive.SortByTotalScore, archive.SortByName, sortBy)
	}
	return archive.Query{Search: search, SortBy: key, Ascending: asc}, nil
}

func runCandidates(cmd *cobra.Command, _ []string) error {
	q, err := candidateQuery(candidatesSearch, candidatesSort, candidatesAsc)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := commandLogger(cfg, true)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	st, storage, err := openStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer storage.Close() //nolint:errcheck

	a := st.Snapshot().Archive
	observability.NewPrinter(cmd.OutOrStdout()).PrintCandidates(a.List(q), a.Stats())
	return nil
}
