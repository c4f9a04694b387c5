// Package tex renders a constrained LaTeX-like markup subset into navigable
// HTML, line by line, with source-position tracking on every block-level
// fragment so an editor can jump from the rendered page back to the source.
//
// Rendering is a two-phase pipeline. Phase one walks the source lines
// (recursing into included files), emits HTML fragments in strict source
// order and populates the label registry. Phase two is a stateless rewrite
// of the accumulated HTML that resolves every \autoref and \appref against
// the completed registry, so references may target labels defined later or
// in another file.
//
// The renderer degrades visibly instead of failing: unresolved references,
// duplicate labels and unterminated environments produce marked output and
// warnings, never an error. The only hard failure is the include resolver
// being unable to produce source text.
package tex

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/hesusruiz/vcutils/yaml"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// An IncludeResolver retrieves the source text of an \input target.
// The core performs no file I/O itself; the host decides how names map to
// content (filesystem, HTTP, test fixtures).
type IncludeResolver interface {
	ReadInclude(name string) ([]byte, error)
}

// ParseState is the mutable, single-owner state of one file being walked.
// At most one environment is open at a time; the paragraph buffer and the
// environment buffer are mutually exclusive accumulators.
type ParseState struct {
	File string
	Line int // 1-based, scoped to this file

	envKind EnvKind
	envName string
	envLine int
	envBuf  []string

	para     []string // position-tagged spans of the open paragraph
	paraLine int
}

func (st *ParseState) closeEnv() {
	st.envKind = EnvNone
	st.envName = ""
	st.envBuf = nil
}

// Parser owns the state of one render invocation. Counters, registry and
// citation ordering span the whole document including included files, while
// a ParseState per file tracks the local line counter. A Parser is not safe
// for concurrent use; create one per render.
type Parser struct {
	log      *zap.SugaredLogger
	resolver IncludeResolver

	config *yaml.YAML
	biblio *yaml.YAML

	reg      *Registry
	counters Counters

	citeOrder map[string]int
	citeSeq   int
	citedKeys []string

	usedAnchor map[string]bool

	html     ByteRenderer
	warnings []error
	depth    int
}

// maxIncludeDepth bounds \input recursion so a cycle cannot hang a render.
const maxIncludeDepth = 10

// NewParser creates a parser. logger may be nil; resolver may be nil when
// the document has no \input directives.
func NewParser(logger *zap.SugaredLogger, resolver IncludeResolver) *Parser {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	p := &Parser{
		log:        logger,
		resolver:   resolver,
		reg:        NewRegistry(logger),
		citeOrder:  make(map[string]int),
		usedAnchor: make(map[string]bool),
	}

	// Initialise the config just in case there is no front matter
	p.config, _ = yaml.ParseYaml("")

	return p
}

// Result is the outcome of one render: the HTML fragment stream and the
// navigation index, immutable once returned.
type Result struct {
	HTML  string
	Title string
	Nav   *NavIndex
}

// Render walks the source, then runs the resolution pass over the full
// accumulated HTML. fileName is used for the position attributes and for
// logging; it is not opened. The returned error is non-nil only when an
// \input target could not be retrieved.
func (p *Parser) Render(fileName string, src []byte) (*Result, error) {

	body, consumed := p.parseFrontMatter(src)

	st := &ParseState{File: fileName, Line: consumed}

	if err := p.walk(st, body); err != nil {
		return nil, err
	}

	p.flushOpenEnvironment(st)
	p.flushParagraph(st)

	if refs := p.renderReferences(); refs != nil {
		p.html.Render(refs)
	}

	html := p.reg.Resolve(p.html.Bytes())

	return &Result{
		HTML:  string(html),
		Title: p.config.String("title"),
		Nav:   &p.reg.Nav,
	}, nil
}

// Warnings returns all non-fatal degradations recorded during the render
// (unresolved references, duplicate labels, unterminated environments),
// aggregated into one error, or nil when the render was clean.
func (p *Parser) Warnings() error {
	all := append([]error{}, p.warnings...)
	all = append(all, p.reg.warnings...)
	return multierr.Combine(all...)
}

func (p *Parser) warn(err error) {
	p.warnings = append(p.warnings, err)
	p.log.Debugw("render warning", "err", err)
}

func (p *Parser) walk(st *ParseState, src []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		st.Line++
		if err := p.processLine(st, scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// stripComment cuts an unescaped % comment from the line. \% survives and
// is turned into a literal percent sign later by the inline expander.
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == '%' && (i == 0 || line[i-1] != '\\') {
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}

// processLine is the dispatch heart of the walker. The priority order is:
// environment continuation/end, checkpoint marker, blank line, \input,
// \section, \subsection, \appendix, \begin, stray \end, plain text.
func (p *Parser) processLine(st *ParseState, raw string) error {

	trimmed := strings.TrimSpace(raw)
	line := strings.TrimSpace(stripComment(trimmed))

	// While an environment is open, lines are buffered until the matching
	// \end, which may sit mid-line. A non-matching \end is ordinary
	// buffered text, which permits literally-typed \end{...} of other
	// names inside a body.
	if st.envKind != EnvNone {
		endTok := `\end{` + st.envName + `}`
		if idx := strings.Index(line, endTok); idx != -1 {
			if chunk := strings.TrimSpace(line[:idx]); chunk != "" {
				st.envBuf = append(st.envBuf, chunk)
			}
			p.renderEnvironment(st)
			st.closeEnv()
			rest := strings.TrimSpace(line[idx+len(endTok):])
			if rest != "" {
				return p.processLine(st, rest)
			}
			return nil
		}
		if st.envKind == EnvVerbatim {
			// Verbatim bodies keep their exact text, indentation included
			st.envBuf = append(st.envBuf, raw)
		} else if line != "" {
			st.envBuf = append(st.envBuf, line)
		}
		return nil
	}

	// A bare '%%check' line becomes a checkpoint marker for the editor,
	// recognized before comment stripping would eat it
	if trimmed == "%%check" {
		p.flushParagraph(st)
		p.html.Renderln("<div class='checkpoint' file='", st.File, "' line='", st.Line, "'></div>")
		return nil
	}

	// A line that only held a comment does not break the paragraph
	if line == "" && trimmed != "" {
		return nil
	}

	// One or more blank lines flush the paragraph; an empty buffer makes
	// this a no-op, so a run of blanks produces a single break
	if line == "" {
		p.flushParagraph(st)
		return nil
	}

	switch {
	case strings.HasPrefix(line, `\input{`):
		return p.processInput(st, line)

	case strings.HasPrefix(line, `\section*{`):
		return p.processSection(st, line, true)

	case strings.HasPrefix(line, `\section{`):
		return p.processSection(st, line, false)

	case strings.HasPrefix(line, `\subsection{`):
		return p.processSubsection(st, line)

	case line == `\appendix`:
		p.flushParagraph(st)
		p.counters.InAppendix = true
		p.counters.AppendixAt = p.counters.Section
		return nil

	case strings.HasPrefix(line, `\begin{`):
		return p.processBegin(st, line)

	case strings.HasPrefix(line, `\end{`):
		// Theorem-like blocks are opened immediately and closed by a later
		// explicit terminator; any other stray \end degrades to plain text
		if name, rest, ok := endName(line); ok && envKindOf(name) == EnvTheorem {
			p.flushParagraph(st)
			p.html.Renderln("</div>")
			if rest = strings.TrimSpace(rest); rest != "" {
				return p.processLine(st, rest)
			}
			return nil
		}
		p.bufferText(st, line)
		return nil

	default:
		p.bufferText(st, line)
		return nil
	}
}

// endName parses `\end{name}` at the start of the line, returning the
// environment name and the remainder of the line.
func endName(line string) (name string, rest string, ok bool) {
	if !strings.HasPrefix(line, `\end{`) {
		return "", "", false
	}
	i := strings.IndexByte(line, '}')
	if i == -1 {
		return "", "", false
	}
	return line[len(`\end{`):i], line[i+1:], true
}

func (p *Parser) processBegin(st *ParseState, line string) error {

	name, _, end, ok := BraceArgSpan(line, `\begin`)
	if !ok {
		p.bufferText(st, line)
		return nil
	}
	rest := strings.TrimSpace(line[end:])

	kind := envKindOf(name)

	// Unknown environments degrade to plain text
	if kind == EnvNone {
		p.bufferText(st, line)
		return nil
	}

	p.flushParagraph(st)

	if kind == EnvTheorem {
		// Theorem-like environments close their opening tag immediately;
		// the rest of the line is ordinary paragraph content in the body
		body := p.renderTheoremOpen(st, name, rest)
		if body != "" {
			p.bufferText(st, body)
		}
		return nil
	}

	st.envKind = kind
	st.envName = name
	st.envLine = st.Line
	st.envBuf = nil

	// The environment may open and close on the same line
	if rest != "" {
		return p.processLine(st, rest)
	}
	return nil
}

func (p *Parser) processInput(st *ParseState, line string) error {

	name, _, end, ok := BraceArgSpan(line, `\input`)
	if !ok {
		p.bufferText(st, line)
		return nil
	}

	p.flushParagraph(st)

	if p.resolver == nil {
		return fmt.Errorf("no include resolver for \\input{%s} at %s:%d", name, st.File, st.Line)
	}
	if p.depth >= maxIncludeDepth {
		p.warn(fmt.Errorf("include depth limit reached at %s:%d, skipping %s", st.File, st.Line, name))
		return nil
	}

	src, err := p.resolver.ReadInclude(name)
	if err != nil {
		return fmt.Errorf("reading include %s: %w", name, err)
	}

	p.log.Debugw("processing include", "file", name, "from", st.File, "line", st.Line)

	// The included file gets its own line counter, starting at 1; its
	// output is spliced here, in strict source order
	p.depth++
	sub := &ParseState{File: name}
	err = p.walk(sub, src)
	p.flushOpenEnvironment(sub)
	p.flushParagraph(sub)
	p.depth--
	if err != nil {
		return err
	}

	// Continue the current file with whatever follows the directive on
	// the same logical line
	rest := strings.TrimSpace(line[end:])
	if rest != "" {
		return p.processLine(st, rest)
	}
	return nil
}

// anchorFor slugifies a heading into an HTML id, falling back to the
// numeric form on empty or colliding slugs. Anchors are unique per render.
func (p *Parser) anchorFor(title, fallback string) string {
	anchor := slug.Make(title)
	if anchor == "" || p.usedAnchor[anchor] {
		anchor = fallback
	}
	p.usedAnchor[anchor] = true
	return anchor
}

func (p *Parser) processSection(st *ParseState, line string, starred bool) error {

	cmd := `\section`
	if starred {
		cmd = `\section*`
	}
	title, _, end, ok := BraceArgSpan(line, cmd)
	if !ok {
		p.bufferText(st, line)
		return nil
	}
	rest := strings.TrimSpace(line[end:])

	label, hasLabel := BraceArg(rest, `\label`)
	if hasLabel {
		rest = strings.TrimSpace(StripCommand(rest, `\label`))
	}

	p.flushParagraph(st)

	if starred {
		// Starred sections are headings without a number, a counter entry
		// or a navigation target
		p.html.Renderln("<h2 class='section-star' file='", st.File, "' line='", st.Line, "'>",
			p.expandInline(escapeText(title)), "</h2>")
	} else {
		p.counters.Section++
		p.counters.Subsection = 0
		n := p.counters.Section

		token := p.counters.sectionToken(n)
		display := p.counters.sectionDisplay(n)
		anchor := p.anchorFor(title, "section-"+strconv.Itoa(n))
		if label == "" {
			label = "section:" + strconv.Itoa(n)
		}

		p.reg.Register(&Entry{Kind: KindSection, Label: label, Number: n, Display: display, Anchor: anchor})
		p.reg.Nav.add(KindSection, NavEntry{
			Number:  strconv.Itoa(n),
			Label:   label,
			ID:      anchor,
			Command: "s " + strconv.Itoa(n),
			Display: token + ". " + title,
		})

		p.html.Renderln("<h2 id='", anchor, "' file='", st.File, "' line='", st.Line,
			"'><span class='secno'>", token, ".</span> ", p.expandInline(escapeText(title)), "</h2>")
	}

	if rest != "" {
		return p.processLine(st, rest)
	}
	return nil
}

func (p *Parser) processSubsection(st *ParseState, line string) error {

	title, _, end, ok := BraceArgSpan(line, `\subsection`)
	if !ok {
		p.bufferText(st, line)
		return nil
	}
	rest := strings.TrimSpace(line[end:])

	label, hasLabel := BraceArg(rest, `\label`)
	if hasLabel {
		rest = strings.TrimSpace(StripCommand(rest, `\label`))
	}

	p.flushParagraph(st)

	p.counters.Subsection++
	sec := p.counters.Section
	sub := p.counters.Subsection

	num := strconv.Itoa(sec) + "." + strconv.Itoa(sub)
	token := p.counters.sectionToken(sec) + "." + strconv.Itoa(sub)
	display := p.counters.subsectionDisplay(sec, sub)
	anchor := p.anchorFor(title, "subsection-"+num)
	if label == "" {
		label = "subsection:" + num
	}

	p.reg.Register(&Entry{Kind: KindSubsection, Label: label, Number: sec, SubNum: sub, Display: display, Anchor: anchor})
	p.reg.Nav.add(KindSubsection, NavEntry{
		Number:  num,
		Label:   label,
		ID:      anchor,
		Command: "s " + num,
		Display: token + ". " + title,
	})

	p.html.Renderln("<h3 id='", anchor, "' file='", st.File, "' line='", st.Line,
		"'><span class='secno'>", token, "</span> ", p.expandInline(escapeText(title)), "</h3>")

	if rest != "" {
		return p.processLine(st, rest)
	}
	return nil
}

// bufferText appends one plain text line to the open paragraph, wrapped in
// a position-tagged span and expanded through the inline macro rules.
func (p *Parser) bufferText(st *ParseState, line string) {
	if len(st.para) == 0 {
		st.paraLine = st.Line
	}
	span := "<span class='texline' file='" + st.File + "' line='" + strconv.Itoa(st.Line) + "'>" +
		p.expandInline(escapeText(line)) + "</span>"
	st.para = append(st.para, span)
}

func (p *Parser) flushParagraph(st *ParseState) {
	if len(st.para) == 0 {
		return
	}
	p.html.Renderln("<p file='", st.File, "' line='", st.paraLine, "'>")
	for _, span := range st.para {
		p.html.Renderln(span)
	}
	p.html.Renderln("</p>")
	st.para = nil
	st.paraLine = 0
}

// flushOpenEnvironment deals with an environment left open at end-of-input.
// The buffered content is flushed as plain text rather than rejected, and a
// warning is recorded.
func (p *Parser) flushOpenEnvironment(st *ParseState) {
	if st.envKind == EnvNone {
		return
	}

	p.warn(fmt.Errorf("unterminated environment %q opened at %s:%d", st.envName, st.File, st.envLine))

	if len(st.envBuf) > 0 {
		if len(st.para) == 0 {
			st.paraLine = st.envLine
		}
		span := "<span class='texline' file='" + st.File + "' line='" + strconv.Itoa(st.envLine) + "'>" +
			p.expandInline(escapeText(strings.Join(st.envBuf, " "))) + "</span>"
		st.para = append(st.para, span)
	}
	st.closeEnv()
}
