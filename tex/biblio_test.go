package tex

import (
	"strings"
	"testing"

	"github.com/hesusruiz/vcutils/yaml"
)

const testBiblio = `
smith2020:
  title: "A Study of Bounds"
  date: "2020-04-01"
  href: "https://example.com/smith"
jones2021:
  title: "Further Results"
`

func renderWithBiblio(t *testing.T, src string) (*Result, *Parser) {
	t.Helper()

	bib, err := yaml.ParseYaml(testBiblio)
	if err != nil {
		t.Fatalf("ParseYaml() error = %v", err)
	}

	p := NewParser(nil, nil)
	p.SetBibliography(bib)

	res, err := p.Render("doc.tex", []byte(src))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return res, p
}

func TestCiteNumbering(t *testing.T) {
	res, _ := renderWithBiblio(t, `First seen in \cite{smith2020}.
Also \cite{jones2021} and again \cite{smith2020}.
`)

	if !strings.Contains(res.HTML, "<a class='cite' href='#bib_smith2020' title='A Study of Bounds'>[1]</a>") {
		t.Errorf("first citation wrong:\n%s", res.HTML)
	}
	if !strings.Contains(res.HTML, "href='#bib_jones2021'") || !strings.Contains(res.HTML, ">[2]</a>") {
		t.Errorf("second citation wrong:\n%s", res.HTML)
	}

	// Repeat citations keep their first-use number
	if got := strings.Count(res.HTML, ">[1]</a>"); got != 2 {
		t.Errorf("got %d uses of [1], want 2:\n%s", got, res.HTML)
	}
}

func TestCiteMultipleKeys(t *testing.T) {
	res, _ := renderWithBiblio(t, `Both \cite{smith2020, jones2021} agree.
`)

	if !strings.Contains(res.HTML, ">[1]</a>") || !strings.Contains(res.HTML, ">[2]</a>") {
		t.Errorf("comma-separated keys not expanded:\n%s", res.HTML)
	}
}

func TestCiteUnknownKey(t *testing.T) {
	res, _ := renderWithBiblio(t, `See \cite{ghost1999}.
`)

	if !strings.Contains(res.HTML, "<span class='cite'>[ghost1999]</span>") {
		t.Errorf("unknown key not degraded:\n%s", res.HTML)
	}
	// An unknown key produces no References entry
	if strings.Contains(res.HTML, "id='References'") {
		t.Errorf("references section should be absent:\n%s", res.HTML)
	}
}

func TestReferencesSection(t *testing.T) {
	res, _ := renderWithBiblio(t, `See \cite{jones2021} before \cite{smith2020}.
`)

	if !strings.Contains(res.HTML, "<section id='References'><h2>References</h2>") {
		t.Errorf("references section missing:\n%s", res.HTML)
	}

	// Entries appear in first-use order
	jones := strings.Index(res.HTML, "<dt id='bib_jones2021'>[1]</dt>")
	smith := strings.Index(res.HTML, "<dt id='bib_smith2020'>[2]</dt>")
	if jones == -1 || smith == -1 || jones > smith {
		t.Errorf("references order wrong (jones=%d, smith=%d):\n%s", jones, smith, res.HTML)
	}

	if !strings.Contains(res.HTML, "<a href='https://example.com/smith'>A Study of Bounds</a>") {
		t.Errorf("linked entry wrong:\n%s", res.HTML)
	}
	if !strings.Contains(res.HTML, "Date: 2020-04-01.") {
		t.Errorf("entry date missing:\n%s", res.HTML)
	}
}

func TestNoBibliography(t *testing.T) {
	res, _ := renderDoc(t, `Plain \cite{anything} text.
`)

	if !strings.Contains(res.HTML, "<span class='cite'>[anything]</span>") {
		t.Errorf("citation without bibliography not degraded:\n%s", res.HTML)
	}
}
