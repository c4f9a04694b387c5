package tex

import "strconv"

// Counters holds the monotonic numbering state shared by a whole render,
// including all recursively included files.
// Equations, figures, tables and theorem-like blocks each have an independent
// counter spanning the whole document; the subsection counter is reset to zero
// on every new section.
type Counters struct {
	Section    int
	Subsection int
	Equation   int
	Figure     int
	Table      int
	Theorem    int

	// AppendixAt is the section count at the moment \appendix was seen.
	// It is zero while still in the main matter. Sections after the marker
	// keep incrementing the absolute counter but display as capital letters
	// offset from this boundary.
	AppendixAt int
	InAppendix bool
}

var romanPairs = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// Roman converts a positive integer to an uppercase Roman numeral.
func Roman(n int) string {
	if n <= 0 {
		return strconv.Itoa(n)
	}
	var out []byte
	for _, p := range romanPairs {
		for n >= p.value {
			out = append(out, p.symbol...)
			n -= p.value
		}
	}
	return string(out)
}

// appendixLetter maps a post-appendix section number to its letter.
// The first section after the boundary is "A", then "B", and so on.
// Beyond "Z" the letters repeat doubled ("AA", "BB", ...), which in practice
// never happens in a real document.
func appendixLetter(n, boundary int) string {
	idx := n - boundary - 1
	letter := string(rune('A' + idx%26))
	for i := 0; i < idx/26; i++ {
		letter += string(rune('A' + idx%26))
	}
	return letter
}

// sectionToken returns the short display token for a section number:
// a Roman numeral in the main matter, a capital letter in the appendix.
func (c *Counters) sectionToken(n int) string {
	if c.InAppendix && n > c.AppendixAt {
		return appendixLetter(n, c.AppendixAt)
	}
	return Roman(n)
}

// sectionDisplay returns the human-readable reference text for a section,
// e.g. "Sec. II" or "Appendix A".
func (c *Counters) sectionDisplay(n int) string {
	if c.InAppendix && n > c.AppendixAt {
		return "Appendix " + appendixLetter(n, c.AppendixAt)
	}
	return "Sec. " + Roman(n)
}

// subsectionDisplay returns the reference text for a subsection,
// e.g. "Sec. II.3" for the third subsection of the second section.
func (c *Counters) subsectionDisplay(section, subsection int) string {
	return "Sec. " + c.sectionToken(section) + "." + strconv.Itoa(subsection)
}
