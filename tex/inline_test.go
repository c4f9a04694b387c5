package tex

import (
	"strings"
	"testing"
)

func TestExpandInline(t *testing.T) {
	p := NewParser(nil, nil)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"emph", `an \emph{important} word`, "an <em>important</em> word"},
		{"textbf", `a \textbf{bold} word`, "a <b>bold</b> word"},
		{"nested", `\emph{\textbf{both}}`, "<em><b>both</b></em>"},
		{"todo", `\todo{fix the bound}`, "<span class='todo'>TODO: fix the bound</span>"},
		{"umlauts", `\"a\"o\"u\"A\"O\"U`, "äöüÄÖÜ"},
		{"escaped hash", `item \#3`, "item #3"},
		{"escaped percent", `50\% done`, "50% done"},
		{"tie", `Fig.~3`, "Fig.&nbsp;3"},
		{"plain passthrough", "nothing special", "nothing special"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.expandInline(tt.in); got != tt.want {
				t.Errorf("expandInline(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExpandProof(t *testing.T) {
	p := NewParser(nil, nil)

	got := p.expandInline(`\pf{thm:dual} Trivial. \qed`)
	if !strings.Contains(got, "<details class='proof' open>") {
		t.Errorf("proof panel not opened: %q", got)
	}
	if !strings.Contains(got, `Proof of \autoref{thm:dual}.`) {
		t.Errorf("proof header does not defer the reference: %q", got)
	}
	if !strings.HasSuffix(got, "</details>") {
		t.Errorf("qed did not close the panel: %q", got)
	}

	// Without a label the header is just "Proof."
	got = p.expandInline(`\pf{} Easy. \qed`)
	if !strings.Contains(got, "<summary>Proof.</summary>") {
		t.Errorf("unlabeled proof header = %q", got)
	}
}
