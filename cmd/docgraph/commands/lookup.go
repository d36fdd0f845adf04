package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/docgraph/apidoc"
	"github.com/teranos/docgraph/docindex"
	"github.com/teranos/docgraph/errors"
	"github.com/teranos/docgraph/logger"
	"github.com/teranos/docgraph/report"
)

// LookupCmd resolves one dotted name against a graph file.
var LookupCmd = &cobra.Command{
	Use:   "lookup <dotted-name>",
	Short: "Look up a dotted name in a graph file",
	Long: `Build the index for a graph file and resolve one dotted name in it.

Prints the record's kind, canonical name and summary, and for
namespaces the variables it holds.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		graphPath, _ := cmd.Flags().GetString("graph")
		if graphPath == "" {
			return errors.New("--graph is required")
		}
		name, err := apidoc.NewDottedName(args[0])
		if err != nil {
			return errors.Wrapf(err, "name %q", args[0])
		}

		roots, err := loadGraph(graphPath)
		if err != nil {
			return err
		}
		warnings := &report.List{}
		ix, err := docindex.New(roots, warnings, logger.Logger)
		if err != nil {
			return err
		}

		value := ix.GetValDoc(name)
		binding := ix.GetVarDoc(name)
		if value == nil && binding == nil {
			return errors.Newf("nothing documented under %s", name)
		}

		if binding != nil {
			printBinding(binding)
		}
		if value != nil {
			printValue(value)
		}
		return nil
	},
}

func init() {
	LookupCmd.Flags().String("graph", "", "Graph file to search (JSON or YAML)")
}

func printBinding(vd *apidoc.VariableDoc) {
	pterm.Printf("%s %s\n", pterm.LightCyan("variable"), vd.Name)
	if summary, known := vd.Summary.Get(); known {
		pterm.Printf("  %s\n", summary)
	}
	if imported, known := vd.IsImported.Get(); known && imported {
		pterm.Printf("  (imported)\n")
	}
}

func printValue(v apidoc.ValueDoc) {
	v = apidoc.Resolve(v)
	name := "<unnamed>"
	if n, known := v.Base().CanonicalName.Get(); known {
		name = n.String()
	}
	pterm.Printf("%s %s\n", pterm.LightCyan(v.Kind().String()), name)
	if summary, known := v.Doc().Summary.Get(); known {
		pterm.Printf("  %s\n", summary)
	}
	if ns, ok := v.(apidoc.NamespaceDoc); ok {
		if sorted, known := ns.Namespace().SortedVariables.Get(); known {
			for _, vd := range sorted {
				pterm.Printf("  - %s\n", vd.Resolve().Name)
			}
			return
		}
	}
	for _, vd := range apidoc.VariablesOf(v) {
		pterm.Printf("  - %s\n", vd.Resolve().Name)
	}
}
