package catalog

import (
	"regexp"
	"strings"
)

// placeholderPattern matches {{name}}, ${name} and [name]. Alternation order
// matters: "{{" must win over the single-brace form.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([^{}\n]+?)\s*\}\}|\$\{\s*([^{}\n]+?)\s*\}|\[([^\[\]\n]+)\]`)

func placeholderName(groups []string) string {
	for _, g := range groups[1:] {
		if g != "" {
			return strings.TrimSpace(g)
		}
	}
	return ""
}

// Variables lists the distinct placeholder names in first-seen order.
func Variables(content string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(content, -1) {
		name := placeholderName(m)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Fill substitutes known values into every placeholder notation. Placeholders
// without a value, or with an empty one, are left as written.
func Fill(content string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(content, func(match string) string {
		name := placeholderName(placeholderPattern.FindStringSubmatch(match))
		if v, ok := values[name]; ok && v != "" {
			return v
		}
		return match
	})
}
