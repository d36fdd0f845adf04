// Package report collects non-fatal advisories raised while building a
// documentation graph.
//
// The build core never prints or drops an advisory; every data-quality
// conflict it resolves (mismatched merge inputs, name conflicts,
// self-shadowing variables, hierarchies C3 cannot linearize) is recorded
// on a List owned by the build. Callers decide how to surface them.
package report

import "fmt"

// Kind classifies an advisory.
type Kind int

const (
	// MergeConflict: the two sources disagreed in a way the merger
	// resolved by precedence instead of fusing.
	MergeConflict Kind = iota
	// NameConflict: two distinct entities competed for one canonical name.
	NameConflict
	// SelfShadow: a variable's value's canonical name is dominated by the
	// variable's own prospective name.
	SelfShadow
	// BadHierarchy: a class hierarchy has no consistent linearization;
	// inheritance was skipped for the affected class only.
	BadHierarchy
)

func (k Kind) String() string {
	switch k {
	case MergeConflict:
		return "merge-conflict"
	case NameConflict:
		return "name-conflict"
	case SelfShadow:
		return "self-shadow"
	case BadHierarchy:
		return "bad-hierarchy"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Advisory is a single non-fatal finding.
type Advisory struct {
	Kind    Kind
	Subject string // dotted name or attribute path the finding is about
	Message string
}

func (a Advisory) String() string {
	if a.Subject == "" {
		return fmt.Sprintf("[%s] %s", a.Kind, a.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", a.Kind, a.Subject, a.Message)
}

// List is an ordered, append-only collection of advisories.
// The zero value is ready to use. Not safe for concurrent use; a build
// is single-threaded by design.
type List struct {
	advisories []Advisory
}

// Add records an advisory.
func (l *List) Add(kind Kind, subject, format string, args ...any) {
	l.advisories = append(l.advisories, Advisory{
		Kind:    kind,
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
	})
}

// All returns the advisories in the order they were recorded.
func (l *List) All() []Advisory {
	return l.advisories
}

// Len returns the number of recorded advisories.
func (l *List) Len() int {
	return len(l.advisories)
}

// ByKind returns the advisories of the given kind, in order.
func (l *List) ByKind(kind Kind) []Advisory {
	var out []Advisory
	for _, a := range l.advisories {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}
