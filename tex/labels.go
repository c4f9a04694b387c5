package tex

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"texpage/sliceedit"
)

// Kind classifies the referenceable entities of a document.
type Kind int

const (
	KindSection Kind = iota
	KindSubsection
	KindEquation
	KindFigure
	KindTable
	KindTheorem
)

// String returns the label-prefix name of the kind, used for
// auto-generated labels like "equation:3".
func (k Kind) String() string {
	switch k {
	case KindSection:
		return "section"
	case KindSubsection:
		return "subsection"
	case KindEquation:
		return "equation"
	case KindFigure:
		return "figure"
	case KindTable:
		return "table"
	case KindTheorem:
		return "theorem"
	}
	return "unknown"
}

// commandPrefix is the short token used in navigation jump commands,
// e.g. "s 2.1" to jump to subsection 2.1 or "f 3" to jump to figure 3.
func (k Kind) commandPrefix() string {
	switch k {
	case KindSection, KindSubsection:
		return "s"
	case KindEquation:
		return "e"
	case KindFigure:
		return "f"
	case KindTable:
		return "t"
	case KindTheorem:
		return "th"
	}
	return "?"
}

// An Entry is the reference metadata of one numbered entity.
// Entries are created when the corresponding construct is parsed and are
// never mutated afterwards.
type Entry struct {
	Kind    Kind
	Label   string // user-supplied via \label{} or auto-generated as kind:index
	Number  int
	SubNum  int    // only for subsections
	Display string // precomputed reference text, e.g. "Fig. 3" or "Sec. II"
	Anchor  string // the HTML id to link to
}

// A NavEntry is the UI-facing projection of an Entry, consumed by an
// external command palette for "jump to section N" style navigation.
type NavEntry struct {
	Number  string `json:"number"`
	Label   string `json:"label"`
	ID      string `json:"id"`
	Command string `json:"command"`
	Display string `json:"display"`
}

// NavIndex aggregates the registered jump targets, one append-only list per
// entity kind, ordered by first appearance in the source.
type NavIndex struct {
	Sections    []NavEntry `json:"sections"`
	Subsections []NavEntry `json:"subsections"`
	Equations   []NavEntry `json:"equations"`
	Figures     []NavEntry `json:"figures"`
	Tables      []NavEntry `json:"tables"`
	Theorems    []NavEntry `json:"theorems"`
}

func (nav *NavIndex) add(kind Kind, e NavEntry) {
	switch kind {
	case KindSection:
		nav.Sections = append(nav.Sections, e)
	case KindSubsection:
		nav.Subsections = append(nav.Subsections, e)
	case KindEquation:
		nav.Equations = append(nav.Equations, e)
	case KindFigure:
		nav.Figures = append(nav.Figures, e)
	case KindTable:
		nav.Tables = append(nav.Tables, e)
	case KindTheorem:
		nav.Theorems = append(nav.Theorems, e)
	}
}

// Registry maps label strings to reference metadata. It is populated while
// the document is walked and consulted by the final resolution pass, so a
// reference may target a label defined later or in another included file.
type Registry struct {
	entries map[string]*Entry
	Nav     NavIndex

	log      *zap.SugaredLogger
	warnings []error
}

func NewRegistry(logger *zap.SugaredLogger) *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
		log:     logger,
	}
}

// Register adds the entry under its label. A duplicate label silently
// overwrites the earlier mapping; this is recorded as a warning but is
// not an error.
func (r *Registry) Register(e *Entry) {
	if prev := r.entries[e.Label]; prev != nil {
		r.warnings = append(r.warnings,
			fmt.Errorf("duplicate label %q: %s overwrites %s", e.Label, e.Display, prev.Display))
		r.log.Debugw("duplicate label", "label", e.Label, "new", e.Display, "old", prev.Display)
	}
	r.entries[e.Label] = e
}

// Lookup returns the entry for a label, or nil when it was never registered.
func (r *Registry) Lookup(label string) *Entry {
	return r.entries[label]
}

var reAutoref = regexp.MustCompile(`\\(autoref|appref)\{([^}]*)\}`)

// Resolve is the second phase of the pipeline: a stateless, re-runnable
// rewrite of every \autoref{} and \appref{} occurrence in the accumulated
// HTML. Known labels become anchors showing the display text; unknown labels
// become a visibly-marked placeholder, never an error.
func (r *Registry) Resolve(html []byte) []byte {

	ed := sliceedit.NewBuffer(html)

	ed.ReplaceAllSubmatchFunc(reAutoref, func(sub [][]byte) string {
		label := string(sub[2])

		e := r.entries[label]
		if e == nil {
			r.warnings = append(r.warnings, fmt.Errorf("unresolved reference %q", label))
			r.log.Debugw("unresolved reference", "label", label)
			return "<span class='ref-unresolved'>[?" + escapeText(label) + "]</span>"
		}

		return "<a class='ref' href='#" + e.Anchor + "'>" + escapeText(e.Display) + "</a>"
	})

	return ed.Bytes()
}
