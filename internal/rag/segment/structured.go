package segment

import "regexp"

// Heuristics for schedule/table-like content. Any single match tags the
// chunk as structured; the tag is advisory metadata, not a filter.
var structuredPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"column_headers", regexp.MustCompile(`(?i)\b(?:MARK|DOOR|TYPE|SIZE|RATING|MATERIAL)\b.*\n`)},
	{"dimensions", regexp.MustCompile(`(?i)\d+\s*x\s*\d+`)},
	{"mark_tokens", regexp.MustCompile(`(?i)\b[A-Z]-?\d+\b`)},
	{"pipe_columns", regexp.MustCompile(`(?i)\|\s*\w+\s*\|`)},
	{"tab_columns", regexp.MustCompile(`(?i)\t\w+\t`)},
}

// ContainsStructuredData reports whether text looks like tabular or
// schedule-like content rather than running prose.
func ContainsStructuredData(text string) bool {
	for _, p := range structuredPatterns {
		if p.re.MatchString(text) {
			return true
		}
	}
	return false
}
