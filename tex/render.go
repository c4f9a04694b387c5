package tex

import (
	"bytes"
	"fmt"
	"strconv"
)

// A ByteRenderer accumulates rendered HTML fragments in memory.
// It accepts heterogeneous arguments to avoid conversions at the call sites.
type ByteRenderer struct {
	bytes.Buffer
}

// Render writes every argument to the buffer, converting to bytes as needed.
func (r *ByteRenderer) Render(inputs ...any) {
	for _, s := range inputs {
		switch v := s.(type) {
		case string:
			r.WriteString(v)
		case []byte:
			r.Write(v)
		case int:
			r.WriteString(strconv.Itoa(v))
		case byte:
			r.WriteByte(v)
		case rune:
			r.WriteRune(v)
		default:
			fmt.Fprintf(r, "%v", v)
		}
	}
}

// Renderln is like Render with a newline appended after all arguments.
func (r *ByteRenderer) Renderln(inputs ...any) {
	r.Render(inputs...)
	r.WriteByte('\n')
}

// CloneBytes returns a copy of the accumulated bytes, safe to retain
// after further writes to the renderer.
func (r *ByteRenderer) CloneBytes() []byte {
	return bytes.Clone(r.Bytes())
}

// escapeText makes a source text line safe for inclusion in HTML.
// It runs before inline macro expansion, so markup produced by the
// expander is not affected.
func escapeText(s string) string {
	var b bytes.Buffer
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
