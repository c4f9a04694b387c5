package tex

import (
	"strconv"
	"strings"
)

// BraceArgSpan finds the first occurrence of command followed by a
// balanced-brace argument, e.g. `\caption{A {nested} caption}`.
// It returns the argument content and the span [start, end) of the whole
// construct in text, so the caller can strip it. Braces nest to arbitrary
// depth. ok is false when the command is absent or its braces never balance.
func BraceArgSpan(text, command string) (arg string, start, end int, ok bool) {

	from := 0
	for {
		i := strings.Index(text[from:], command)
		if i == -1 {
			return "", 0, 0, false
		}
		start = from + i

		rest := text[start+len(command):]
		if len(rest) == 0 || rest[0] != '{' {
			// The command is a prefix of a longer one, e.g. \label inside \labelled
			from = start + len(command)
			continue
		}

		arg, after, ok := braceAt(rest)
		if !ok {
			return "", 0, 0, false
		}
		end = len(text) - len(after)
		return arg, start, end, true
	}
}

// BraceArg returns the content of the first balanced-brace argument of the
// named command in text.
func BraceArg(text, command string) (string, bool) {
	arg, _, _, ok := BraceArgSpan(text, command)
	return arg, ok
}

// StripCommand removes the first occurrence of command{...} from text.
func StripCommand(text, command string) string {
	_, start, end, ok := BraceArgSpan(text, command)
	if !ok {
		return text
	}
	return text[:start] + text[end:]
}

// braceAt reads a balanced {...} group at the very beginning of text.
// It returns the group content and the remaining text after the closing brace.
func braceAt(text string) (arg string, rest string, ok bool) {
	if len(text) == 0 || text[0] != '{' {
		return "", text, false
	}
	depth := 0
	for j := 0; j < len(text); j++ {
		switch text[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[1:j], text[j+1:], true
			}
		}
	}
	return "", text, false
}

// optArgAt reads an optional bracketed argument at the very beginning of
// text, as in `[Strong Duality]\label{thm:dual}`. It returns the argument
// content and the remaining text.
func optArgAt(text string) (opt string, rest string) {
	if len(text) == 0 || text[0] != '[' {
		return "", text
	}
	i := strings.IndexByte(text, ']')
	if i == -1 {
		return "", text
	}
	return text[1:i], text[i+1:]
}

// graphicsSpec is the structured result of an \includegraphics occurrence.
type graphicsSpec struct {
	Path  string
	Width float64 // fraction of \textwidth, 1 when unspecified
}

// findGraphics extracts the first \includegraphics[width=W\textwidth]{path}
// from text. The width factor defaults to 1 when the optional argument is
// missing or not in the recognized form.
func findGraphics(text string) (graphicsSpec, bool) {
	g := graphicsSpec{Width: 1}

	i := strings.Index(text, `\includegraphics`)
	if i == -1 {
		return g, false
	}
	rest := text[i+len(`\includegraphics`):]

	opt, rest := optArgAt(rest)
	if w, ok := strings.CutSuffix(strings.TrimPrefix(opt, "width="), `\textwidth`); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(w), 64); err == nil && f > 0 {
			g.Width = f
		}
	}

	path, _, ok := braceAt(rest)
	if !ok {
		return g, false
	}
	g.Path = path
	return g, true
}

// subfloatSpec is the structured result of one \subfloat[caption]{content}
// block inside a figure environment.
type subfloatSpec struct {
	Caption string
	Content string
}

// findSubfloats extracts all \subfloat[caption]{content} blocks from a
// figure body, with one level of brace balancing inside the content.
// It also returns the text outside the subfloat blocks, so labels and
// captions inside a subfloat are never mistaken for the figure's own.
func findSubfloats(text string) ([]subfloatSpec, string) {
	var subs []subfloatSpec
	var outside strings.Builder

	for {
		i := strings.Index(text, `\subfloat`)
		if i == -1 {
			outside.WriteString(text)
			return subs, outside.String()
		}
		outside.WriteString(text[:i])
		rest := text[i+len(`\subfloat`):]

		caption, rest := optArgAt(rest)

		content, after, ok := braceAt(rest)
		if !ok {
			// Malformed subfloat, skip past the command name
			text = rest
			continue
		}
		subs = append(subs, subfloatSpec{Caption: caption, Content: content})
		text = after
	}
}
