// Package docbuild runs the full documentation-graph pipeline: it
// merges a live-inspected graph with a statically parsed one, builds
// the canonicalized index, and resolves inheritance. The result is one
// consistent graph ready for lookup and rendering.
//
// Each call to Build is independent; all pipeline state lives in the
// merger, index and inheriter it creates, so builds may run
// concurrently.
package docbuild

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/docgraph/apidoc"
	"github.com/teranos/docgraph/docindex"
	"github.com/teranos/docgraph/docinherit"
	"github.com/teranos/docgraph/docmerge"
	"github.com/teranos/docgraph/report"
)

// DefaultUniversalBase is the canonical name of the class every
// new-style hierarchy is rooted at. Hierarchies rooted here are
// linearized with C3.
var DefaultUniversalBase = apidoc.MustName("object")

// Options configures a build. The zero value is usable.
type Options struct {
	// DefaultPrecedence decides merge conflicts with no fixed winner.
	DefaultPrecedence docmerge.Precedence

	// UniversalBase overrides DefaultUniversalBase.
	UniversalBase apidoc.DottedName

	// Progress receives pipeline events; nil discards them.
	Progress ProgressEmitter

	// Log receives structured diagnostics; nil discards them.
	Log *zap.SugaredLogger
}

// Source is one side's input: the top-level values it documented.
type Source struct {
	Roots []docindex.Root
}

// Result is a finished build.
type Result struct {
	// BuildID uniquely identifies this build run.
	BuildID string

	// Index is the canonicalized, inheritance-resolved graph.
	Index *docindex.DocIndex

	// Warnings collects every advisory raised during the build.
	Warnings *report.List
}

// Build runs the pipeline over the two sources. Either source may be
// empty; roots present on both sides (matched by name) are merged,
// one-sided roots pass through unchanged.
func Build(live, static Source, opts Options) (*Result, error) {
	progress := opts.Progress
	if progress == nil {
		progress = NopEmitter{}
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	universalBase := opts.UniversalBase
	if universalBase.IsZero() {
		universalBase = DefaultUniversalBase
	}

	warnings := &report.List{}
	buildID := uuid.NewString()
	log.Debugw("starting build", "build_id", buildID,
		"live_roots", len(live.Roots), "static_roots", len(static.Roots))

	progress.EmitStage("merge", "combining live and static records")
	merger := docmerge.New(opts.DefaultPrecedence, warnings, log)
	roots := mergeRoots(merger, live.Roots, static.Roots)
	progress.EmitProgress(len(roots), map[string]interface{}{"type": "roots"})

	progress.EmitStage("index", "canonicalizing names")
	ix, err := docindex.New(roots, warnings, log)
	if err != nil {
		progress.EmitError("index", err)
		return nil, err
	}
	progress.EmitProgress(len(ix.Reachable()), map[string]interface{}{"type": "values"})

	progress.EmitStage("inherit", "resolving class inheritance")
	docinherit.New(universalBase, warnings, log).Run(ix)

	progress.EmitComplete(map[string]interface{}{
		"build_id":  buildID,
		"reachable": len(ix.Reachable()),
		"contained": len(ix.Contained()),
		"warnings":  warnings.Len(),
	})
	return &Result{
		BuildID:  buildID,
		Index:    ix,
		Warnings: warnings,
	}, nil
}

// mergeRoots pairs the two root lists by name. Live-side order is
// preserved; static-only roots follow in their own order.
func mergeRoots(merger *docmerge.Merger, live, static []docindex.Root) []docindex.Root {
	staticByName := make(map[string]docindex.Root, len(static))
	for _, root := range static {
		staticByName[root.Name.String()] = root
	}

	var out []docindex.Root
	seen := map[string]bool{}
	for _, root := range live {
		key := root.Name.String()
		seen[key] = true
		value := root.Value
		if counterpart, ok := staticByName[key]; ok {
			value = merger.Merge(root.Value, counterpart.Value)
		}
		out = append(out, docindex.Root{Name: root.Name, Value: value})
	}
	for _, root := range static {
		if !seen[root.Name.String()] {
			out = append(out, root)
		}
	}
	return out
}
