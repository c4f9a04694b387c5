package tex

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	hlhtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// EnvKind is the tagged dispatch over the supported environments, so the
// renderer set is exhaustively checked at compile time instead of comparing
// name strings at every use site.
type EnvKind int

const (
	EnvNone EnvKind = iota
	EnvEquation // equation, align, gather
	EnvFigure
	EnvTable
	EnvList    // itemize, enumerate
	EnvTheorem // theorem, lemma, definition, corollary, example, problem
	EnvVerbatim
)

// envKindOf maps an environment name to its renderer kind. Starred variants
// (figure*, table*) behave like their plain forms. Unknown names return
// EnvNone and the line degrades to plain text.
func envKindOf(name string) EnvKind {
	switch strings.TrimSuffix(name, "*") {
	case "equation", "align", "gather":
		return EnvEquation
	case "figure":
		return EnvFigure
	case "table":
		return EnvTable
	case "itemize", "enumerate":
		return EnvList
	case "theorem", "lemma", "definition", "corollary", "example", "problem":
		return EnvTheorem
	case "verbatim":
		return EnvVerbatim
	}
	return EnvNone
}

// renderEnvironment consumes the buffered body of the environment that just
// closed and emits its HTML fragment. Buffered lines are joined with single
// spaces, except for verbatim bodies which keep their line structure.
func (p *Parser) renderEnvironment(st *ParseState) {
	name := st.envName
	switch st.envKind {
	case EnvEquation:
		p.renderEquation(st, name, strings.Join(st.envBuf, " "))
	case EnvFigure:
		p.renderFigure(st, strings.Join(st.envBuf, " "))
	case EnvTable:
		p.renderTable(st, strings.Join(st.envBuf, " "))
	case EnvList:
		p.renderList(st, name, strings.Join(st.envBuf, " "))
	case EnvVerbatim:
		p.renderVerbatim(st, strings.Join(st.envBuf, "\n"))
	}
}

// renderEquation wraps the math body verbatim in a numbered container.
// The body is passed through untouched for the external math typesetter.
// For align and gather, every internal line break adds one extra entry to
// the equation counter; this is a coarse approximation of per-row numbering.
func (p *Parser) renderEquation(st *ParseState, name, body string) {

	label, hasLabel := BraceArg(body, `\label`)
	if hasLabel {
		body = StripCommand(body, `\label`)
	}

	p.counters.Equation++
	n := p.counters.Equation

	if base := strings.TrimSuffix(name, "*"); base == "align" || base == "gather" {
		p.counters.Equation += strings.Count(body, `\\`)
	}

	anchor := "equation-" + strconv.Itoa(n)
	display := "Eq. (" + strconv.Itoa(n) + ")"
	if label == "" {
		label = "equation:" + strconv.Itoa(n)
	}

	p.reg.Register(&Entry{Kind: KindEquation, Label: label, Number: n, Display: display, Anchor: anchor})
	p.reg.Nav.add(KindEquation, NavEntry{
		Number:  strconv.Itoa(n),
		Label:   label,
		ID:      anchor,
		Command: "e " + strconv.Itoa(n),
		Display: display,
	})

	p.html.Renderln("<div class='equation' id='", anchor, "' file='", st.File, "' line='", st.envLine, "'>")
	p.html.Renderln(`\begin{`, name, `}`, " ", strings.TrimSpace(body), " ", `\end{`, name, `}`)
	p.html.Renderln("<span class='eqno'>(", n, ")</span>")
	p.html.Renderln("</div>")
}

// imageTag renders one included graphic. PDF graphics get an embed tag so
// the browser renders them natively; everything else becomes an img tag.
func imageTag(g graphicsSpec) string {
	width := strconv.FormatFloat(math.Round(g.Width*10000)/100, 'f', -1, 64) + "%"
	if strings.HasSuffix(strings.ToLower(g.Path), ".pdf") {
		return "<embed class='figimg' type='application/pdf' src='" + escapeAttr(g.Path) + "' style='width:" + width + "'>"
	}
	return "<img class='figimg' src='" + escapeAttr(g.Path) + "' style='width:" + width + "'>"
}

func (p *Parser) renderFigure(st *ParseState, body string) {

	body = strings.ReplaceAll(body, `\centering`, "")

	// Subfloat blocks come out first so their labels stay their own.
	// The figure label comes out before the caption so a \label nested
	// inside \caption{} is registered instead of leaking as literal text.
	subs, body := findSubfloats(body)

	label, hasLabel := BraceArg(body, `\label`)
	if hasLabel {
		body = StripCommand(body, `\label`)
	}
	caption, hasCaption := BraceArg(body, `\caption`)
	if hasCaption {
		body = StripCommand(body, `\caption`)
		caption = strings.TrimSpace(caption)
	}

	p.counters.Figure++
	n := p.counters.Figure
	anchor := "figure-" + strconv.Itoa(n)
	display := "Fig. " + strconv.Itoa(n)
	if label == "" {
		label = "figure:" + strconv.Itoa(n)
	}

	p.reg.Register(&Entry{Kind: KindFigure, Label: label, Number: n, Display: display, Anchor: anchor})
	p.reg.Nav.add(KindFigure, NavEntry{
		Number:  strconv.Itoa(n),
		Label:   label,
		ID:      anchor,
		Command: "f " + strconv.Itoa(n),
		Display: display + ": " + caption,
	})

	p.html.Renderln("<figure id='", anchor, "' file='", st.File, "' line='", st.envLine, "'>")

	if len(subs) > 0 {
		// Each subfloat gets a sub-letter appended to the parent number
		for i, sub := range subs {
			letter := string(rune('a' + i))
			subAnchor := anchor + letter

			if subLabel, ok := BraceArg(sub.Content, `\label`); ok {
				p.reg.Register(&Entry{
					Kind: KindFigure, Label: subLabel, Number: n,
					Display: display + letter, Anchor: subAnchor,
				})
			}

			p.html.Render("<span class='subfig' id='", subAnchor, "'>")
			if g, ok := findGraphics(sub.Content); ok {
				p.html.Render(imageTag(g))
			}
			p.html.Render("<span class='subcaption'>(", letter, ") ", p.expandInline(escapeText(sub.Caption)), "</span>")
			p.html.Renderln("</span>")
		}
	} else if g, ok := findGraphics(body); ok {
		p.html.Renderln(imageTag(g))
	}

	if hasCaption {
		p.html.Renderln("<figcaption><b>", display, ".</b> ", p.expandInline(escapeText(caption)), "</figcaption>")
	}

	p.html.Renderln("</figure>")
}

func (p *Parser) renderTable(st *ParseState, body string) {

	// Label before caption, so a \label nested inside \caption{} works
	label, hasLabel := BraceArg(body, `\label`)
	if hasLabel {
		body = StripCommand(body, `\label`)
	}
	caption, hasCaption := BraceArg(body, `\caption`)
	if hasCaption {
		body = StripCommand(body, `\caption`)
		caption = strings.TrimSpace(caption)
	}

	p.counters.Table++
	n := p.counters.Table
	anchor := "table-" + strconv.Itoa(n)
	display := "Table " + strconv.Itoa(n)
	if label == "" {
		label = "table:" + strconv.Itoa(n)
	}

	p.reg.Register(&Entry{Kind: KindTable, Label: label, Number: n, Display: display, Anchor: anchor})
	p.reg.Nav.add(KindTable, NavEntry{
		Number:  strconv.Itoa(n),
		Label:   label,
		ID:      anchor,
		Command: "t " + strconv.Itoa(n),
		Display: display + ": " + caption,
	})

	p.html.Renderln("<figure class='table' id='", anchor, "' file='", st.File, "' line='", st.envLine, "'>")
	if hasCaption {
		p.html.Renderln("<figcaption><b>", display, ".</b> ", p.expandInline(escapeText(caption)), "</figcaption>")
	}
	p.html.Renderln("<table>")

	// The rows live in a nested tabular block. No column spans, cell
	// alignment or multi-row cells, just \hline row boundaries and & cells.
	_, _, colspecEnd, ok := BraceArgSpan(body, `\begin{tabular}`)
	if ok {
		inner := body[colspecEnd:]
		if j := strings.Index(inner, `\end{tabular}`); j != -1 {
			inner = inner[:j]
		}

		for _, row := range strings.Split(inner, `\hline`) {
			row = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(row), `\\`))
			if row == "" {
				continue
			}
			p.html.Render("<tr>")
			for _, cell := range strings.Split(row, "&") {
				p.html.Render("<td>", p.expandInline(escapeText(strings.TrimSpace(cell))), "</td>")
			}
			p.html.Renderln("</tr>")
		}
	}

	p.html.Renderln("</table>")
	p.html.Renderln("</figure>")
}

func (p *Parser) renderList(st *ParseState, name, body string) {

	tag := "ul"
	if strings.TrimSuffix(name, "*") == "enumerate" {
		tag = "ol"
	}

	p.html.Renderln("<", tag, " file='", st.File, "' line='", st.envLine, "'>")

	items := strings.Split(body, `\item`)
	for i, item := range items {
		item = strings.TrimSpace(item)
		// Text before the first \item is not an item
		if i == 0 {
			continue
		}
		p.html.Renderln("<li>", p.expandInline(escapeText(item)), "</li>")
	}

	p.html.Renderln("</", tag, ">")
}

// renderVerbatim highlights the body with chroma, keeping the exact line
// structure. The style name comes from the front matter configuration.
func (p *Parser) renderVerbatim(st *ParseState, body string) {

	p.html.Renderln("<div class='verbatim' file='", st.File, "' line='", st.envLine, "'>")

	l := lexers.Analyse(body)
	if l == nil {
		l = lexers.Fallback
	}
	l = chroma.Coalesce(l)

	styleName := p.config.String("codeStyle", "github")
	s := styles.Get(styleName)

	f := hlhtml.New(hlhtml.Standalone(false), hlhtml.PreventSurroundingPre(true))

	it, err := l.Tokenise(nil, body)
	if err != nil {
		p.warn(fmt.Errorf("highlighting verbatim block at %s:%d: %w", st.File, st.envLine, err))
		p.html.Render("<pre>", escapeText(body), "</pre>\n")
	} else {
		rb := &bytes.Buffer{}
		if err := f.Format(rb, s, it); err != nil {
			p.warn(fmt.Errorf("formatting verbatim block at %s:%d: %w", st.File, st.envLine, err))
			p.html.Render("<pre>", escapeText(body), "</pre>\n")
		} else {
			p.html.Render("<pre class='precolor'>")
			p.html.Render(rb.Bytes())
			p.html.Renderln("</pre>")
		}
	}

	p.html.Renderln("</div>")
}

// renderTheoremOpen handles the theorem-like family, which closes its
// opening tag immediately: the body text that follows is ordinary paragraph
// content inside the synthesized div, terminated later by the explicit
// \end{kind} line. All theorem-like kinds draw from one shared counter, so
// "Lemma 3" can follow "Theorem 2".
// It returns the remainder of the opening line, which belongs to the body.
func (p *Parser) renderTheoremOpen(st *ParseState, name, rest string) string {

	dispName, rest := optArgAt(rest)

	label, hasLabel := BraceArg(rest, `\label`)
	if hasLabel {
		rest = StripCommand(rest, `\label`)
	}

	p.counters.Theorem++
	n := p.counters.Theorem

	title := strings.ToUpper(name[:1]) + name[1:]
	display := title + " " + strconv.Itoa(n)
	anchor := "theorem-" + strconv.Itoa(n)
	if label == "" {
		label = "theorem:" + strconv.Itoa(n)
	}

	navDisplay := display
	if dispName != "" {
		navDisplay += " (" + dispName + ")"
	}

	p.reg.Register(&Entry{Kind: KindTheorem, Label: label, Number: n, Display: display, Anchor: anchor})
	p.reg.Nav.add(KindTheorem, NavEntry{
		Number:  strconv.Itoa(n),
		Label:   label,
		ID:      anchor,
		Command: "th " + strconv.Itoa(n),
		Display: navDisplay,
	})

	p.html.Render("<div class='theorem' id='", anchor, "' file='", st.File, "' line='", st.Line, "'>")
	if dispName != "" {
		p.html.Renderln("<b>", display, " (", escapeText(dispName), ").</b>")
	} else {
		p.html.Renderln("<b>", display, ".</b>")
	}

	return strings.TrimSpace(rest)
}
