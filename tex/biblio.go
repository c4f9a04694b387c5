package tex

import (
	"strings"

	"github.com/hesusruiz/vcutils/yaml"
)

// SetBibliography provides the reference data used to resolve \cite keys.
// The data is a YAML mapping from citation key to entry (title, date, href),
// loaded by the host either from the front matter "localBiblio" tag or from
// a localbiblio.yaml file next to the document. The core never reads files.
func (p *Parser) SetBibliography(bib *yaml.YAML) {
	p.biblio = bib
}

// expandCite renders one bracketed citation token per comma-separated key.
// Keys found in the bibliography get an incrementing citation number in
// first-use order and a hover tooltip with the entry title; unknown keys
// degrade to a plain bracketed placeholder.
func (p *Parser) expandCite(arg string) string {
	var out ByteRenderer

	for _, key := range strings.Split(arg, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		var entry map[string]any
		if p.biblio != nil {
			entry = p.biblio.Map(key)
		}
		// Map returns an empty map for a missing key, so an unknown key
		// is an empty entry, not a nil one
		if len(entry) == 0 {
			out.Render("<span class='cite'>[", escapeText(key), "]</span>")
			continue
		}

		num, ok := p.citeOrder[key]
		if !ok {
			p.citeSeq++
			num = p.citeSeq
			p.citeOrder[key] = num
			p.citedKeys = append(p.citedKeys, key)
		}

		title := yaml.New(entry).String("title")
		out.Render("<a class='cite' href='#bib_", key, "' title='", escapeAttr(title), "'>[", num, "]</a>")
	}

	return out.String()
}

// renderReferences emits the References section with all cited entries in
// first-use order. Returns nil when nothing was cited.
func (p *Parser) renderReferences() []byte {

	if len(p.citedKeys) == 0 {
		return nil
	}

	htmlBuilder := &ByteRenderer{}
	htmlBuilder.Renderln()
	htmlBuilder.Renderln("<section id='References'><h2>References</h2>")
	htmlBuilder.Renderln("<dl>")

	for _, key := range p.citedKeys {

		e := yaml.New(p.biblio.Map(key))
		title := e.String("title")
		date := e.String("date")
		href := e.String("href")

		htmlBuilder.Renderln("<dt id='bib_", key, "'>[", p.citeOrder[key], "]</dt>")
		htmlBuilder.Renderln("<dd>")

		if len(href) > 0 {
			htmlBuilder.Render("<a href='", href, "'>", title, "</a>. ")
		} else {
			htmlBuilder.Render(title, ". ")
		}

		if len(date) > 0 {
			htmlBuilder.Render("Date: ", date, ". ")
		}

		if len(href) > 0 {
			htmlBuilder.Render("URL: <a href='", href, "'>", href, "</a>. ")
		}
		htmlBuilder.Renderln("</dd>")
	}

	htmlBuilder.Renderln("</dl>")
	htmlBuilder.Renderln("</section>")

	return htmlBuilder.Bytes()
}

// escapeAttr makes a string safe inside a single-quoted HTML attribute.
func escapeAttr(s string) string {
	return strings.ReplaceAll(escapeText(s), "'", "&#39;")
}
