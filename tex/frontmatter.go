package tex

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hesusruiz/vcutils/yaml"
)

// parseFrontMatter strips an optional YAML header delimited by "---" lines
// at the very beginning of the source and loads it into the parser config.
// It returns the remaining body and the number of source lines consumed, so
// the walker can keep the line counter aligned with the original file.
//
// A malformed or unterminated header is a warning, not an error; the source
// is then rendered unchanged from the top.
func (p *Parser) parseFrontMatter(src []byte) (body []byte, consumed int) {

	if !bytes.HasPrefix(src, []byte("---")) {
		return src, 0
	}

	// Build a string with all subsequent lines up to the next "---"
	var yamlString strings.Builder
	var endFound bool

	lines := strings.SplitAfter(string(src), "\n")
	consumed = 1

	for _, line := range lines[1:] {
		consumed++
		if strings.HasPrefix(line, "---") {
			endFound = true
			break
		}
		yamlString.WriteString(line)
	}

	if !endFound {
		p.warn(fmt.Errorf("front matter opened at line 1 but never closed"))
		return src, 0
	}

	body = []byte(strings.Join(lines[consumed:], ""))

	config, err := yaml.ParseYaml(yamlString.String())
	if err != nil {
		p.warn(fmt.Errorf("malformed front matter: %w", err))
		return body, consumed
	}
	p.config = config

	// The bibliography may be embedded in the header under "localBiblio";
	// a host-loaded bibliography file is only a fallback
	if bib, _ := p.config.Get("localBiblio"); bib != nil {
		p.biblio = bib
	}

	return body, consumed
}
