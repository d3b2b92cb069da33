package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
)

var validFormats = []string{"json", "text"}

func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}

// outputResultText dispatches on the result payload type and renders it as
// human-readable text.
func outputResultText(result CLIResult) error {
	w := io.Writer(os.Stdout)

	switch v := result.Results.(type) {
	case []CLIDeclaration:
		formatDeclarationsText(w, v)
	case []CLIMember:
		formatMembersText(w, v)
	case []CLILink:
		formatLinksText(w, v)
	case []CLILibrary:
		formatLibrariesText(w, v)
	case []CLIWarning:
		formatWarningsText(w, v)
	case []string:
		for _, s := range v {
			fmt.Fprintln(w, s)
		}
	case map[string]int:
		formatCountsText(w, v)
	case nil:
		// No output for nil results.
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	return nil
}

func formatDeclarationsText(w io.Writer, decls []CLIDeclaration) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKIND\tMODIFIERS\tLIBRARY")
	for _, d := range decls {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			d.ID, d.Name, d.Kind, strings.Join(d.Modifiers, ","), d.SourceURI)
	}
	tw.Flush()
}

func formatMembersText(w io.Writer, members []CLIMember) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKIND\tTYPE\tMODIFIERS\tPARAMS")
	for _, m := range members {
		params := make([]string, 0, len(m.Parameters))
		for _, p := range m.Parameters {
			params = append(params, fmt.Sprintf("%s %s", p.Type, p.Name))
		}
		name := m.Name
		if name == "" {
			name = "(default)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			m.ID, name, m.Kind, m.Type, strings.Join(m.Modifiers, ","), strings.Join(params, ", "))
	}
	tw.Flush()
}

func formatLinksText(w io.Writer, links []CLILink) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FROM\tROLE\tNAME\tKIND\tRESOLVED")
	for _, l := range links {
		resolved := "no"
		if l.Resolved {
			resolved = l.ResolvedName
			if resolved == "" {
				resolved = "yes"
			}
		}
		name := l.Display
		if name == "" {
			name = l.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", l.From, l.Role, name, l.Kind, resolved)
	}
	tw.Flush()
}

func formatLibrariesText(w io.Writer, libs []CLILibrary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tURI")
	for _, l := range libs {
		fmt.Fprintf(tw, "%d\t%s\n", l.ID, l.URI)
	}
	tw.Flush()
}

func formatWarningsText(w io.Writer, warnings []CLIWarning) {
	for _, warning := range warnings {
		fmt.Fprintf(w, "%s: %s: %s\n", warning.Stage, warning.Subject, warning.Detail)
	}
}

func formatCountsText(w io.Writer, counts map[string]int) {
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tCOUNT")
	for _, kind := range kinds {
		fmt.Fprintf(tw, "%s\t%d\n", kind, counts[kind])
	}
	tw.Flush()
}
