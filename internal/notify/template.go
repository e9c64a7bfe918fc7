package notify

import "regexp"

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z][a-zA-Z0-9]*)\}`)

// Render substitutes {name} placeholders from vars. Placeholders with
// no supplied variable stay in the output verbatim; rendering never
// fails.
func Render(template string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		if v, ok := vars[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}
