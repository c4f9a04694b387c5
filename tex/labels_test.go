package tex

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func testRegistry() *Registry {
	return NewRegistry(zap.NewNop().Sugar())
}

func TestRegisterAndLookup(t *testing.T) {
	r := testRegistry()

	r.Register(&Entry{Kind: KindEquation, Label: "eq:one", Number: 1, Display: "Eq. (1)", Anchor: "equation-1"})

	e := r.Lookup("eq:one")
	if e == nil || e.Display != "Eq. (1)" {
		t.Fatalf("Lookup() = %+v", e)
	}
	if r.Lookup("missing") != nil {
		t.Errorf("Lookup of unknown label should be nil")
	}
}

func TestRegisterDuplicateOverwrites(t *testing.T) {
	r := testRegistry()

	r.Register(&Entry{Kind: KindFigure, Label: "fig:x", Number: 1, Display: "Fig. 1", Anchor: "figure-1"})
	r.Register(&Entry{Kind: KindFigure, Label: "fig:x", Number: 2, Display: "Fig. 2", Anchor: "figure-2"})

	// Last writer wins, and the collision is recorded
	if e := r.Lookup("fig:x"); e.Number != 2 {
		t.Errorf("duplicate label resolved to %+v, want the later entry", e)
	}
	if len(r.warnings) != 1 {
		t.Errorf("got %d warnings, want 1", len(r.warnings))
	}
}

func TestResolve(t *testing.T) {
	r := testRegistry()
	r.Register(&Entry{Kind: KindSection, Label: "sec:intro", Number: 1, Display: "Sec. I", Anchor: "introduction"})

	in := `see \autoref{sec:intro} and \autoref{sec:gone}`
	out := string(r.Resolve([]byte(in)))

	if !strings.Contains(out, "<a class='ref' href='#introduction'>Sec. I</a>") {
		t.Errorf("known reference not resolved: %q", out)
	}
	if !strings.Contains(out, "<span class='ref-unresolved'>[?sec:gone]</span>") {
		t.Errorf("unknown reference not marked: %q", out)
	}
	if len(r.warnings) != 1 {
		t.Errorf("got %d warnings, want 1", len(r.warnings))
	}
}

func TestResolveAppref(t *testing.T) {
	r := testRegistry()
	r.Register(&Entry{Kind: KindSection, Label: "app:proofs", Number: 4, Display: "Appendix A", Anchor: "proofs"})

	out := string(r.Resolve([]byte(`details in \appref{app:proofs}`)))
	if !strings.Contains(out, ">Appendix A</a>") {
		t.Errorf("appref not resolved: %q", out)
	}
}

func TestNavIndexAdd(t *testing.T) {
	var nav NavIndex
	nav.add(KindEquation, NavEntry{Number: "1", Command: "e 1"})
	nav.add(KindTheorem, NavEntry{Number: "1", Command: "th 1"})

	if len(nav.Equations) != 1 || len(nav.Theorems) != 1 {
		t.Errorf("nav lists = %d equations, %d theorems", len(nav.Equations), len(nav.Theorems))
	}
	if len(nav.Sections) != 0 {
		t.Errorf("unexpected section entries: %v", nav.Sections)
	}
}
