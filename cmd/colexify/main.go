// Command colexify builds colexification graphs from Kaikki Wiktionary
// dumps. Each stage reads and writes a file, "-" meaning stdin or stdout:
//
//	colexify extract dump.jsonl.gz -o observations.tsv
//	colexify build observations.tsv -o edges.tsv
//	colexify format edges.tsv -o graph.json
//
// run chains the stages over one output directory.
//
// Exit codes: 0 = success, 1 = error or concept ID collision.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/palasimi/colexification-graphs/internal/app"
)

var rootCmd = &cobra.Command{
	Use:           "colexify",
	Short:         "Build colexification graphs from Wiktionary translation tables",
	Version:       app.BuildVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var extractCmd = &cobra.Command{
	Use:   "extract [dump.jsonl]",
	Short: "Extract sense observations from a Kaikki JSONL dump",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExtract,
}

var buildCmd = &cobra.Command{
	Use:   "build [observations.tsv]",
	Short: "Build the weighted colexification graph",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBuild,
}

var formatCmd = &cobra.Command{
	Use:   "format [edges.tsv]",
	Short: "Convert an edge list into a Cytoscape JSON document",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFormat,
}

var quantilesCmd = &cobra.Command{
	Use:   "quantiles [edges.tsv]",
	Short: "Summarize the edge weight distribution",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runQuantiles,
}

var collisionsCmd = &cobra.Command{
	Use:   "collisions [observations.tsv]",
	Short: "List distinct sense nodes that share a concept ID",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCollisions,
}

var runCmd = &cobra.Command{
	Use:   "run <dump.jsonl>",
	Short: "Run the pipeline phases over one output directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runPipeline,
}

var (
	configPath  string
	outputPath  string
	outDir      string
	phaseList   string
	senseCutoff int
	edgeCutoff  int
	workers     int
	nodeIDs     string
	indent      bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "path to YAML config file (default: built-in defaults)")

	for _, cmd := range []*cobra.Command{extractCmd, buildCmd, formatCmd, quantilesCmd, collisionsCmd} {
		cmd.Flags().StringVarP(&outputPath, "output", "o", "-", "output file, .gz or .zst to compress")
	}

	buildCmd.Flags().IntVar(&senseCutoff, "sense-cutoff", 0, "minimum languages per sense node (overrides config)")
	buildCmd.Flags().IntVar(&edgeCutoff, "edge-cutoff", 0, "minimum edge weight (overrides config)")
	buildCmd.Flags().IntVar(&workers, "workers", 0, "concurrent language reducers (overrides config)")

	formatCmd.Flags().StringVar(&nodeIDs, "node-ids", "", `node ID scheme, "concept" or "sequential" (overrides config)`)
	formatCmd.Flags().BoolVar(&indent, "indent", false, "pretty-print the JSON document")

	runCmd.Flags().StringVar(&outDir, "out-dir", "out", "directory for checkpoints and artifacts")
	runCmd.Flags().StringVar(&phaseList, "phase", "", "comma-separated phases to run (default: extract,build,format,report)")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(quantilesCmd)
	rootCmd.AddCommand(collisionsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(storeCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "colexify:", err)
		os.Exit(1)
	}
}

func inputArg(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, logger, err := app.Setup(configPath)
	if err != nil {
		return err
	}
	return app.Transform(inputArg(args), outputPath, func(r io.Reader, w io.Writer) error {
		_, err := app.Extract(cmd.Context(), logger, cfg.Extract, r, w)
		return err
	})
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, logger, err := app.Setup(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("sense-cutoff") {
		cfg.Build.SenseCutoff = senseCutoff
	}
	if flags.Changed("edge-cutoff") {
		cfg.Build.EdgeCutoff = edgeCutoff
	}
	if flags.Changed("workers") {
		cfg.Build.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	return app.Transform(inputArg(args), outputPath, func(r io.Reader, w io.Writer) error {
		_, err := app.Build(cmd.Context(), logger, cfg.Build, r, w)
		return err
	})
}

func runFormat(cmd *cobra.Command, args []string) error {
	cfg, _, err := app.Setup(configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("node-ids") {
		cfg.Format.NodeIDs = nodeIDs
	}
	if cmd.Flags().Changed("indent") {
		cfg.Format.Indent = indent
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	return app.Transform(inputArg(args), outputPath, func(r io.Reader, w io.Writer) error {
		_, err := app.Format(cfg.Format, r, w)
		return err
	})
}

func runQuantiles(_ *cobra.Command, args []string) error {
	if _, _, err := app.Setup(configPath); err != nil {
		return err
	}
	return app.Transform(inputArg(args), outputPath, func(r io.Reader, w io.Writer) error {
		_, err := app.Quantiles(r, w)
		return err
	})
}

var errCollisions = errors.New("concept id collisions found")

func runCollisions(_ *cobra.Command, args []string) error {
	_, logger, err := app.Setup(configPath)
	if err != nil {
		return err
	}

	var found int
	err = app.Transform(inputArg(args), outputPath, func(r io.Reader, w io.Writer) error {
		collisions, err := app.Collisions(r, w)
		found = len(collisions)
		return err
	})
	if err != nil {
		return err
	}
	if found > 0 {
		logger.Warn("concept id collisions", slog.Int("ids", found))
		return fmt.Errorf("%w: %d ids", errCollisions, found)
	}
	return nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, logger, err := app.Setup(configPath)
	if err != nil {
		return err
	}

	var phases []string
	if phaseList != "" {
		for _, ph := range strings.Split(phaseList, ",") {
			phases = append(phases, strings.TrimSpace(ph))
		}
	}

	pipeline := app.NewPipeline(logger, cfg, args[0], outDir, openGraphStore)
	if err := pipeline.Run(cmd.Context(), phases); err != nil {
		return err
	}

	logger.Info("pipeline completed successfully",
		slog.String("run_id", pipeline.RunID().String()),
		slog.String("out_dir", outDir),
	)
	return nil
}

