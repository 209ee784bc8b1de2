package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-richtext/pkg/interfaces"
)

// Previewer implements interfaces.MarkdownRenderer with goldmark and, when
// requested, a bluemonday policy that keeps embedded data URI images.
// It is stateless and safe for concurrent use.
type Previewer struct {
	defaultOptions interfaces.RenderOptions
	policy         *bluemonday.Policy
}

var _ interfaces.MarkdownRenderer = (*Previewer)(nil)

// NewPreviewer constructs a renderer using defaults for Render.
func NewPreviewer(defaults interfaces.RenderOptions) *Previewer {
	return &Previewer{
		defaultOptions: defaults,
		policy:         previewPolicy(),
	}
}

// Render converts markdown into HTML using the default options.
func (p *Previewer) Render(markdown []byte) ([]byte, error) {
	return p.RenderWithOptions(markdown, p.defaultOptions)
}

// RenderWithOptions converts markdown into HTML using opts. Front matter is
// stripped before rendering.
func (p *Previewer) RenderWithOptions(markdown []byte, opts interfaces.RenderOptions) ([]byte, error) {
	_, body, err := SplitFrontMatter(string(markdown))
	if err != nil {
		body = string(markdown)
	}

	engine := newGoldmarkEngine(opts)
	var buf bytes.Buffer
	if err := engine.Convert([]byte(body), &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	if !opts.Sanitize {
		return buf.Bytes(), nil
	}
	return p.policy.SanitizeBytes(buf.Bytes()), nil
}

var codeClass = regexp.MustCompile(`^language-[\w+#-]+$`)

func previewPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowDataURIImages()
	policy.AllowElements("u", "del", "s")
	policy.AllowAttrs("class").Matching(codeClass).OnElements("code")
	return policy
}

// newGoldmarkEngine builds an engine for opts. Raw HTML is always emitted so
// underline tags survive; sanitizing happens afterwards.
func newGoldmarkEngine(opts interfaces.RenderOptions) goldmark.Markdown {
	rendererOptions := []renderer.Option{html.WithUnsafe()}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOptions...),
	}
	if exts := collectExtensions(opts.Extensions); len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}
	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

// collectExtensions resolves extension names. The default is the same
// strikethrough dialect the importer reads; unknown names are ignored.
func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.Strikethrough}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}
	return extenders
}

// ExtensionNames lists the names accepted in RenderOptions.Extensions.
func ExtensionNames() []string {
	names := make([]string, 0, len(extensionRegistry))
	for name := range extensionRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
