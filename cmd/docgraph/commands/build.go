package commands

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/docgraph/apidoc"
	"github.com/teranos/docgraph/config"
	"github.com/teranos/docgraph/docbuild"
	"github.com/teranos/docgraph/docindex"
	"github.com/teranos/docgraph/docmerge"
	"github.com/teranos/docgraph/errors"
	"github.com/teranos/docgraph/graphio"
	"github.com/teranos/docgraph/logger"
)

// BuildCmd runs the full pipeline: merge, index, inherit.
var BuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Merge, canonicalize and inherit documentation graphs",
	Long: `Run the documentation build pipeline over one or two graph files.

With both --live and --static, records present on both sides are merged
before indexing. With only one side the pipeline canonicalizes and
resolves inheritance for that graph alone.

Graph files are JSON or YAML, chosen by extension.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		livePath, _ := cmd.Flags().GetString("live")
		staticPath, _ := cmd.Flags().GetString("static")
		outPath, _ := cmd.Flags().GetString("out")
		precedenceFlag, _ := cmd.Flags().GetString("precedence")
		if livePath == "" && staticPath == "" {
			return errors.New("at least one of --live and --static is required")
		}

		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "loading configuration")
		}
		if precedenceFlag == "" {
			precedenceFlag = cfg.Build.MergePrecedence
		}
		precedence, err := parsePrecedence(precedenceFlag)
		if err != nil {
			return err
		}
		universalBase, err := apidoc.NewDottedName(cfg.Build.UniversalBase)
		if err != nil {
			return errors.Wrapf(err, "universal base %q", cfg.Build.UniversalBase)
		}

		var live, static docbuild.Source
		if livePath != "" {
			if live.Roots, err = loadGraph(livePath); err != nil {
				return err
			}
		}
		if staticPath != "" {
			if static.Roots, err = loadGraph(staticPath); err != nil {
				return err
			}
		}

		verbosity, _ := cmd.Flags().GetCount("verbose")
		result, err := docbuild.Build(live, static, docbuild.Options{
			DefaultPrecedence: precedence,
			UniversalBase:     universalBase,
			Progress:          progressEmitter(cfg.Build.Progress, verbosity),
			Log:               logger.Logger,
		})
		if err != nil {
			return err
		}

		for _, adv := range result.Warnings.All() {
			pterm.Warning.Printf("%s: %s: %s\n", adv.Kind, adv.Subject, adv.Message)
		}

		if outPath != "" {
			if err := writeGraph(outPath, indexRoots(result.Index)); err != nil {
				return err
			}
			pterm.Printf("Wrote %s\n", pterm.LightCyan(outPath))
		}
		return nil
	},
}

func init() {
	BuildCmd.Flags().String("live", "", "Graph file from live inspection")
	BuildCmd.Flags().String("static", "", "Graph file from static parsing")
	BuildCmd.Flags().String("out", "", "Write the merged graph to this file")
	BuildCmd.Flags().String("precedence", "", "Merge precedence: live or static (default from config)")
}

func parsePrecedence(s string) (docmerge.Precedence, error) {
	switch strings.ToLower(s) {
	case "", "live":
		return docmerge.Live, nil
	case "static":
		return docmerge.Static, nil
	default:
		return docmerge.Live, errors.Newf("unknown merge precedence %q (want live or static)", s)
	}
}

func progressEmitter(kind string, verbosity int) docbuild.ProgressEmitter {
	switch kind {
	case "json":
		return docbuild.NewJSONEmitter()
	case "none":
		return docbuild.NopEmitter{}
	default:
		return docbuild.NewCLIEmitter(verbosity)
	}
}

// loadGraph reads a graph file, picking the codec by extension.
func loadGraph(path string) ([]docindex.Root, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return graphio.DecodeYAML(f)
	default:
		return graphio.DecodeJSON(f)
	}
}

// writeGraph writes a graph file, picking the codec by extension.
func writeGraph(path string, roots []docindex.Root) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return graphio.EncodeYAML(f, roots)
	default:
		return graphio.EncodeJSON(f, roots)
	}
}

// indexRoots rebuilds the root list of a finished index, using each
// root's canonical name.
func indexRoots(ix *docindex.DocIndex) []docindex.Root {
	var roots []docindex.Root
	for _, v := range ix.Roots() {
		v = apidoc.Resolve(v)
		name, known := v.Base().CanonicalName.Get()
		if !known {
			continue
		}
		roots = append(roots, docindex.Root{Name: name, Value: v})
	}
	return roots
}
