package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jetleaf/typegraph/internal/store"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the declaration graph index",
	Long:  "Run structural queries against a scanned type universe.",
}

func init() {
	queryCmd.AddCommand(declCmd)
	queryCmd.AddCommand(kindCmd)
	queryCmd.AddCommand(libraryCmd)
	queryCmd.AddCommand(annotatedCmd)
	queryCmd.AddCommand(membersCmd)
	queryCmd.AddCommand(linksCmd)
	queryCmd.AddCommand(chainCmd)
	queryCmd.AddCommand(subtypesCmd)
	queryCmd.AddCommand(unresolvedCmd)
	queryCmd.AddCommand(warningsCmd)
	queryCmd.AddCommand(countsCmd)
	queryCmd.AddCommand(librariesCmd)
}

// --- Helpers ---

// openStore opens the index database from the --index flag path.
func openStore() (*store.Store, error) {
	if _, err := os.Stat(flagIndex); os.IsNotExist(err) {
		return nil, fmt.Errorf("index not found: %s (run 'typegraph scan' first)", flagIndex)
	}
	return store.NewStore(flagIndex)
}

// outputResult writes a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as
// a CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// runDeclarationQuery is the shared body of the commands that return
// declaration rows keyed by one string argument.
func runDeclarationQuery(command, arg string, query func(*store.Store, string) ([]*store.Declaration, error)) error {
	st, err := openStore()
	if err != nil {
		return outputError(command, err)
	}
	defer st.Close()

	decls, err := query(st, arg)
	if err != nil {
		return outputError(command, err)
	}
	return outputResult(CLIResult{
		Command: command,
		Results: toCLIDeclarations(decls),
	})
}

// --- Declaration lookups ---

var declCmd = &cobra.Command{
	Use:   "decl <name>",
	Short: "Find declarations by simple name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeclarationQuery("decl", args[0], (*store.Store).DeclarationsByName)
	},
}

var kindCmd = &cobra.Command{
	Use:   "kind <kind>",
	Short: "List declarations of a kind (class, enum, mixin, typedef, record, function, field)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeclarationQuery("kind", args[0], (*store.Store).DeclarationsByKind)
	},
}

var libraryCmd = &cobra.Command{
	Use:   "library <uri>",
	Short: "List declarations in a library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeclarationQuery("library", args[0], (*store.Store).DeclarationsInLibrary)
	},
}

var annotatedCmd = &cobra.Command{
	Use:   "annotated <annotation>",
	Short: "List declarations carrying an annotation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeclarationQuery("annotated", args[0], (*store.Store).AnnotatedWith)
	},
}

var subtypesCmd = &cobra.Command{
	Use:   "subtypes <name>",
	Short: "List declarations that extend, implement, or mix in a type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeclarationQuery("subtypes", args[0], (*store.Store).SubtypesOf)
	},
}

// --- Structure ---

var membersCmd = &cobra.Command{
	Use:   "members <name>",
	Short: "List the members of a declaration, with parameters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return outputError("members", err)
		}
		defer st.Close()

		members, err := st.MembersOf(args[0])
		if err != nil {
			return outputError("members", err)
		}
		out := make([]CLIMember, 0, len(members))
		for _, m := range members {
			params, err := st.ParametersOf(m.ID)
			if err != nil {
				return outputError("members", err)
			}
			out = append(out, toCLIMember(m, params))
		}
		return outputResult(CLIResult{Command: "members", Results: out})
	},
}

var flagRole string

var linksCmd = &cobra.Command{
	Use:   "links <name>",
	Short: "List a declaration's outgoing type links",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return outputError("links", err)
		}
		defer st.Close()

		links, err := st.LinksOf(args[0], flagRole)
		if err != nil {
			return outputError("links", err)
		}
		return outputResult(CLIResult{Command: "links", Results: toCLILinks(links)})
	},
}

func init() {
	linksCmd.Flags().StringVar(&flagRole, "role", "", "filter by role: supertype|interface|mixin|on|alias|type_argument|type_param")
}

var chainCmd = &cobra.Command{
	Use:   "chain <name>",
	Short: "Print a declaration's supertype chain, nearest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return outputError("chain", err)
		}
		defer st.Close()

		chain, err := st.SupertypeChain(args[0])
		if err != nil {
			return outputError("chain", err)
		}
		return outputResult(CLIResult{Command: "chain", Results: chain})
	},
}

// --- Diagnostics ---

var unresolvedCmd = &cobra.Command{
	Use:   "unresolved",
	Short: "List type links no scanned declaration satisfied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return outputError("unresolved", err)
		}
		defer st.Close()

		links, err := st.UnresolvedLinks()
		if err != nil {
			return outputError("unresolved", err)
		}
		return outputResult(CLIResult{Command: "unresolved", Results: toCLILinks(links)})
	},
}

var warningsCmd = &cobra.Command{
	Use:   "warnings",
	Short: "List the warnings recorded by the last scan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return outputError("warnings", err)
		}
		defer st.Close()

		warnings, err := st.Warnings()
		if err != nil {
			return outputError("warnings", err)
		}
		out := make([]CLIWarning, 0, len(warnings))
		for _, w := range warnings {
			out = append(out, CLIWarning{Stage: w.Stage, Subject: w.Subject, Detail: w.Detail})
		}
		return outputResult(CLIResult{Command: "warnings", Results: out})
	},
}

var countsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Count indexed declarations by kind",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return outputError("counts", err)
		}
		defer st.Close()

		counts, err := st.CountsByKind()
		if err != nil {
			return outputError("counts", err)
		}
		return outputResult(CLIResult{Command: "counts", Results: counts})
	},
}

var librariesCmd = &cobra.Command{
	Use:   "libraries",
	Short: "List the indexed libraries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return outputError("libraries", err)
		}
		defer st.Close()

		libs, err := st.Libraries()
		if err != nil {
			return outputError("libraries", err)
		}
		out := make([]CLILibrary, 0, len(libs))
		for _, l := range libs {
			out = append(out, CLILibrary{ID: l.ID, URI: l.URI})
		}
		return outputResult(CLIResult{Command: "libraries", Results: out})
	},
}
