package tex

import "testing"

func TestRoman(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "I"}, {2, "II"}, {4, "IV"}, {5, "V"}, {9, "IX"},
		{14, "XIV"}, {40, "XL"}, {90, "XC"}, {1987, "MCMLXXXVII"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := Roman(tt.n); got != tt.want {
			t.Errorf("Roman(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestSectionTokenAcrossAppendix(t *testing.T) {
	c := &Counters{}

	// Three main-matter sections
	c.Section = 3
	if got := c.sectionToken(3); got != "III" {
		t.Errorf("sectionToken(3) = %q, want III", got)
	}

	// The appendix marker freezes the boundary; later sections letter up
	c.InAppendix = true
	c.AppendixAt = 3

	c.Section = 4
	if got := c.sectionToken(4); got != "A" {
		t.Errorf("first appendix token = %q, want A", got)
	}
	c.Section = 5
	if got := c.sectionToken(5); got != "B" {
		t.Errorf("second appendix token = %q, want B", got)
	}

	// Pre-boundary sections keep their Roman form even after the marker
	if got := c.sectionToken(2); got != "II" {
		t.Errorf("pre-boundary token = %q, want II", got)
	}
}

func TestSectionDisplay(t *testing.T) {
	c := &Counters{Section: 2}
	if got := c.sectionDisplay(2); got != "Sec. II" {
		t.Errorf("sectionDisplay = %q, want %q", got, "Sec. II")
	}

	c.InAppendix = true
	c.AppendixAt = 2
	c.Section = 3
	if got := c.sectionDisplay(3); got != "Appendix A" {
		t.Errorf("sectionDisplay = %q, want %q", got, "Appendix A")
	}
}

func TestSubsectionDisplay(t *testing.T) {
	c := &Counters{Section: 2, Subsection: 3}
	if got := c.subsectionDisplay(2, 3); got != "Sec. II.3" {
		t.Errorf("subsectionDisplay = %q, want %q", got, "Sec. II.3")
	}
}
