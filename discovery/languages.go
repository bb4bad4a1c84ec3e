package discovery

import (
	"encoding/json"
	"io"
)

var (
	// JavaScriptThreshold is the share of JavaScript, in percent, a
	// repository must exceed to count as a JavaScript repository.
	JavaScriptThreshold = 80.0

	// IgnoredLanguages are documentation languages which don't count toward
	// a repository's share of code.
	IgnoredLanguages = []string{"HTML", "CSS"}
)

// ParseLanguages parses a GitHub repository languages document, a JSON
// object mapping language names to bytes of code.
func ParseLanguages(r io.Reader) (map[string]int64, error) {
	langs := map[string]int64{}
	if err := json.NewDecoder(r).Decode(&langs); err != nil {
		return nil, err
	}
	return langs, nil
}

// WithoutIgnored returns a copy of langs without IgnoredLanguages.
func WithoutIgnored(langs map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(langs))
	for lang, n := range langs {
		out[lang] = n
	}
	for _, lang := range IgnoredLanguages {
		delete(out, lang)
	}
	return out
}

// JavaScriptShare returns the percentage of langs which is JavaScript,
// ignoring IgnoredLanguages.  An empty breakdown has a share of 0.
func JavaScriptShare(langs map[string]int64) float64 {
	var (
		kept  = WithoutIgnored(langs)
		total int64
	)
	for _, n := range kept {
		total += n
	}
	if total <= 0 {
		total = 1
	}
	return 100.0 * float64(kept["JavaScript"]) / float64(total)
}

// IsJavaScript returns true when the JavaScript share of langs exceeds
// JavaScriptThreshold.
func IsJavaScript(langs map[string]int64) bool {
	return JavaScriptShare(langs) > JavaScriptThreshold
}
