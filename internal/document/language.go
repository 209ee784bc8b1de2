package document

import (
	"slices"
	"strings"
)

// LanguagePlain tags code blocks without a recognized language.
const LanguagePlain = "plain"

var recognizedLanguages = map[string]struct{}{
	LanguagePlain: {},
	"javascript":  {},
	"typescript":  {},
	"python":      {},
	"java":        {},
	"c":           {},
	"cpp":         {},
	"csharp":      {},
	"go":          {},
	"rust":        {},
	"ruby":        {},
	"php":         {},
	"swift":       {},
	"kotlin":      {},
	"scala":       {},
	"bash":        {},
	"powershell":  {},
	"sql":         {},
	"json":        {},
	"yaml":        {},
	"xml":         {},
	"html":        {},
	"css":         {},
	"markdown":    {},
	"latex":       {},
	"r":           {},
	"lua":         {},
	"perl":        {},
	"haskell":     {},
	"dockerfile":  {},
	"diff":        {},
}

var languageAliases = map[string]string{
	"js":        "javascript",
	"jsx":       "javascript",
	"ts":        "typescript",
	"tsx":       "typescript",
	"py":        "python",
	"python3":   "python",
	"sh":        "bash",
	"shell":     "bash",
	"zsh":       "bash",
	"c++":       "cpp",
	"cs":        "csharp",
	"c#":        "csharp",
	"golang":    "go",
	"rs":        "rust",
	"rb":        "ruby",
	"ps1":       "powershell",
	"yml":       "yaml",
	"md":        "markdown",
	"tex":       "latex",
	"htm":       "html",
	"docker":    "dockerfile",
	"patch":     "diff",
	"text":      LanguagePlain,
	"txt":       LanguagePlain,
	"plaintext": LanguagePlain,
}

// NormalizeLanguage maps a fence info tag onto the recognized set. Aliases
// resolve to their canonical name; empty or unknown tags become plain.
func NormalizeLanguage(tag string) string {
	normalized, _ := LookupLanguage(tag)
	return normalized
}

// LookupLanguage is NormalizeLanguage that also reports whether tag was
// recognized. An empty tag counts as recognized.
func LookupLanguage(tag string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(tag))
	if key == "" {
		return LanguagePlain, true
	}
	if _, ok := recognizedLanguages[key]; ok {
		return key, true
	}
	if alias, ok := languageAliases[key]; ok {
		return alias, true
	}
	return LanguagePlain, false
}

// Languages lists the canonical language names in sorted order.
func Languages() []string {
	out := make([]string, 0, len(recognizedLanguages))
	for name := range recognizedLanguages {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
