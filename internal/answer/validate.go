package answer

import (
	"regexp"
	"strings"
)

var citationRe = regexp.MustCompile(`\[\d+\]`)

// Validate checks a generated answer against the minimum length, the
// citation-marker density expected for the number of sources supplied,
// and the structural section count. It returns the list of
// deficiencies, empty when the answer passes.
func Validate(text string, sources, minLength, minSections int) []string {
	var deficiencies []string

	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minLength {
		deficiencies = append(deficiencies, "below minimum length")
	}

	if sources > 0 {
		// Expect at least one citation per two sources supplied.
		want := (sources + 1) / 2
		if len(citationRe.FindAllString(trimmed, -1)) < want {
			deficiencies = append(deficiencies, "insufficient citations")
		}
	}

	if countSections(trimmed) < minSections {
		deficiencies = append(deficiencies, "too few sections")
	}

	return deficiencies
}

// countSections counts paragraph blocks separated by blank lines;
// markdown headings also open a section.
func countSections(text string) int {
	sections := 0
	for _, block := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(block) != "" {
			sections++
		}
	}
	return sections
}
