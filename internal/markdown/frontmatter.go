package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// yamlFormat decodes front matter with yaml.v3 so nested mappings come back
// as map[string]any.
var yamlFormat = frontmatter.NewFormat(frontMatterDelimiter, frontMatterDelimiter, yaml.Unmarshal)

// SplitFrontMatter separates a leading YAML front matter block from the
// markdown body. Input without a well-formed block is returned unchanged with
// nil metadata, so a leading thematic break is never mistaken for metadata.
func SplitFrontMatter(source string) (map[string]any, string, error) {
	if !hasFrontMatter(source) {
		return nil, source, nil
	}

	var meta map[string]any
	body, err := frontmatter.Parse(strings.NewReader(source), &meta, yamlFormat)
	if err != nil {
		return nil, source, fmt.Errorf("parse frontmatter: %w", err)
	}
	if len(meta) == 0 && bytes.Equal(body, []byte(source)) {
		return nil, source, nil
	}
	return meta, strings.TrimLeft(string(body), "\n"), nil
}

func hasFrontMatter(source string) bool {
	rest, ok := strings.CutPrefix(source, frontMatterDelimiter+"\n")
	if !ok || rest == "" || rest[0] == '\n' {
		return false
	}
	return strings.Contains(rest, "\n"+frontMatterDelimiter) || strings.HasPrefix(rest, frontMatterDelimiter)
}
