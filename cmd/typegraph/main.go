package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jetleaf/typegraph"
	"github.com/jetleaf/typegraph/internal/fixture"
	"github.com/jetleaf/typegraph/internal/runtime"
)

var (
	flagIndex  string
	flagFormat string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "typegraph",
	Short:         "Declaration graph builder over dual metadata oracles",
	Long:          "Typegraph reconciles a runtime reflection view and a static-analysis view of a type universe into one declaration graph, indexes it into SQLite, and answers structural queries against it.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run so the bare command prints help.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagIndex, "index", filepath.Join(".typegraph", "index.db"), "index database path")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(evalCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan <universe.yaml>",
	Short: "Resolve a declared type universe and build the query index",
	Long:  "Loads a YAML universe description, resolves every library through the dual-oracle engine, and writes the resulting declaration graph to the SQLite index.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	start := time.Now()

	u, err := fixture.LoadFile(args[0])
	if err != nil {
		return fmt.Errorf("loading universe: %w", err)
	}

	if dir := filepath.Dir(flagIndex); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	// A scan always rebuilds the index from scratch.
	if err := os.Remove(flagIndex); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale index: %w", err)
	}

	sess, err := typegraph.NewSession(typegraph.Sources{
		Reflection: u.Reflection(),
		Static:     u,
		Text:       u,
		Registry:   u,
	}, typegraph.WithIndexPath(flagIndex))
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	defer sess.Close()

	if err := sess.Scan(context.Background()); err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	counts, err := sess.CountsByKind()
	if err != nil {
		return fmt.Errorf("reading index: %w", err)
	}
	total := 0
	for _, n := range counts {
		total += n
	}

	fmt.Fprintf(os.Stderr, "Scanned %d libraries, %d declarations in %s\n",
		len(sess.Libraries()), total, time.Since(start).Round(time.Millisecond))
	if warnings := sess.Warnings(); len(warnings) > 0 {
		fmt.Fprintf(os.Stderr, "%d warnings (run 'typegraph query warnings' to list them)\n", len(warnings))
	}
	fmt.Fprintf(os.Stderr, "Index: %s\n", flagIndex)

	return nil
}

var flagScriptsDir string

var evalCmd = &cobra.Command{
	Use:   "eval <script.risor>",
	Short: "Run a Risor script against the index",
	Long:  "Executes a Risor script with the graph query functions and the db proxy in scope. The index must already exist; run 'typegraph scan' first.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEval,
}

func init() {
	evalCmd.Flags().StringVar(&flagScriptsDir, "scripts-dir", "", "directory for script-relative imports")
}

func runEval(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rt := runtime.NewRuntime(st, flagScriptsDir)
	return rt.RunScript(context.Background(), args[0], nil)
}
