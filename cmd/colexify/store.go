package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/palasimi/colexification-graphs/internal/adapter/store"
	"github.com/palasimi/colexification-graphs/internal/app"
	"github.com/palasimi/colexification-graphs/internal/checkpoint"
	"github.com/palasimi/colexification-graphs/internal/config"
	"github.com/palasimi/colexification-graphs/internal/domain"
	"github.com/palasimi/colexification-graphs/internal/fileio"
)

// Compile-time interface assertion.
var _ app.GraphStore = (*store.Store)(nil)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Load and query the SQL graph store",
}

var storeLoadCmd = &cobra.Command{
	Use:   "load [edges.tsv]",
	Short: "Replace the stored graph with an edge list",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStoreLoad,
}

var storeNeighborsCmd = &cobra.Command{
	Use:   "neighbors <word> <sense>",
	Short: "List the nodes colexified with a sense node, heaviest first",
	Args:  cobra.ExactArgs(2),
	RunE:  runStoreNeighbors,
}

var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored graph size and the last load",
	Args:  cobra.NoArgs,
	RunE:  runStoreStatus,
}

var (
	storeDriver    string
	storeDSN       string
	neighborsLimit int
)

func init() {
	storeCmd.PersistentFlags().StringVar(&storeDriver, "driver", "", `store driver, "sqlite" or "pgx" (overrides config)`)
	storeCmd.PersistentFlags().StringVar(&storeDSN, "dsn", "", "store data source name (overrides config)")
	storeNeighborsCmd.Flags().IntVar(&neighborsLimit, "limit", 20, "maximum neighbors to list, 0 for all")

	storeCmd.AddCommand(storeLoadCmd)
	storeCmd.AddCommand(storeNeighborsCmd)
	storeCmd.AddCommand(storeStatusCmd)
}

func openGraphStore(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (app.GraphStore, error) {
	s, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// openStore loads config, applies the connection flags and opens the store.
func openStore(cmd *cobra.Command) (*store.Store, *slog.Logger, error) {
	cfg, logger, err := app.Setup(configPath)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.Store.Driver = storeDriver
	}
	if flags.Changed("dsn") {
		cfg.Store.DSN = storeDSN
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	s, err := store.Open(cmd.Context(), cfg.Store, logger)
	if err != nil {
		return nil, nil, err
	}
	return s, logger, nil
}

func runStoreLoad(cmd *cobra.Command, args []string) error {
	s, logger, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := fileio.Open(inputArg(args))
	if err != nil {
		return err
	}
	defer r.Close()

	edges, err := checkpoint.ReadEdges(r)
	if err != nil {
		return fmt.Errorf("read edges: %w", err)
	}

	runID := uuid.New()
	if err := s.Replace(cmd.Context(), runID, domain.Graph{Edges: edges}); err != nil {
		return err
	}
	logger.Info("graph loaded", slog.String("run_id", runID.String()), slog.Int("edges", len(edges)))
	return nil
}

func runStoreNeighbors(cmd *cobra.Command, args []string) error {
	s, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	neighbors, err := s.Neighbors(cmd.Context(), domain.SenseNode{Word: args[0], Sense: args[1]}, neighborsLimit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WEIGHT\tWORD\tSENSE")
	for _, n := range neighbors {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", n.Weight, n.Node.Word, n.Node.Sense)
	}
	return tw.Flush()
}

func runStoreStatus(cmd *cobra.Command, _ []string) error {
	s, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	nodes, edges, err := s.Counts(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "nodes: %d\nedges: %d\n", nodes, edges)

	run, err := s.LastRun(ctx)
	switch {
	case err == nil:
		fmt.Fprintf(out, "last run: %s at %s\n", run.ID, run.LoadedAt.Local().Format(time.DateTime))
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}
	return nil
}
