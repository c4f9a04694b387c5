package tex

import "strings"

// The inline macro expander is a fixed, order-sensitive sequence of text
// substitutions applied once per flushed paragraph or environment body.
// The order is part of the contract: later rules may act on text introduced
// by earlier ones, and citation expansion must not double-process markers
// produced by the todo rule.

var umlautReplacer = strings.NewReplacer(
	`\"a`, "ä", `\"o`, "ö", `\"u`, "ü",
	`\"A`, "Ä", `\"O`, "Ö", `\"U`, "Ü",
)

// expandCommand repeatedly rewrites occurrences of command{...} in text,
// with the replacement computed by repl from the brace-balanced argument.
func expandCommand(text, command string, repl func(arg string) string) string {
	for {
		arg, start, end, ok := BraceArgSpan(text, command)
		if !ok {
			return text
		}
		text = text[:start] + repl(arg) + text[end:]
	}
}

func (p *Parser) expandInline(text string) string {

	text = expandCommand(text, `\todo`, func(arg string) string {
		return "<span class='todo'>TODO: " + arg + "</span>"
	})

	text = umlautReplacer.Replace(text)

	text = expandCommand(text, `\emph`, func(arg string) string {
		return "<em>" + arg + "</em>"
	})

	text = expandCommand(text, `\textbf`, func(arg string) string {
		return "<b>" + arg + "</b>"
	})

	text = strings.ReplaceAll(text, `\#`, "#")
	text = strings.ReplaceAll(text, `\%`, "%")
	text = strings.ReplaceAll(text, "~", "&nbsp;")

	text = expandCommand(text, `\cite`, p.expandCite)

	text = expandCommand(text, `\pf`, p.expandProofOpen)
	text = strings.ReplaceAll(text, `\qed`, "<span class='qed'>&#8718;</span></details>")

	return text
}

// expandProofOpen opens a collapsible proof panel. When a label is given,
// the panel header references the theorem it proves; the reference is left
// for the final resolution pass, so the theorem may appear later in the
// document.
func (p *Parser) expandProofOpen(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "<details class='proof' open><summary>Proof.</summary>"
	}
	return `<details class='proof' open><summary>Proof of \autoref{` + label + `}.</summary>`
}
