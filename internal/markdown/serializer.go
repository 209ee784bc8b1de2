package markdown

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark/util"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-richtext/internal/document"
)

// Serialize renders doc as markdown. Blocks are separated by one blank line
// and the output carries no trailing newline. Front matter, when present, is
// emitted first as a YAML block.
func Serialize(doc *document.Document) string {
	if doc == nil {
		return ""
	}
	body := SerializeBlocks(doc.Blocks())
	header := renderFrontMatter(doc.FrontMatter)
	switch {
	case header == "":
		return body
	case body == "":
		return header
	default:
		return header + "\n\n" + body
	}
}

// SerializeBlocks renders a block sequence without front matter.
func SerializeBlocks(blocks []document.Block) string {
	return strings.Join(renderBlocks(blocks), "\n\n")
}

func renderFrontMatter(meta map[string]any) string {
	if len(meta) == 0 {
		return ""
	}
	data, err := yaml.Marshal(meta)
	if err != nil {
		return ""
	}
	return frontMatterDelimiter + "\n" + string(data) + frontMatterDelimiter
}

func renderBlocks(blocks []document.Block) []string {
	out := make([]string, 0, len(blocks))
	var seq listSequence
	for _, b := range blocks {
		var rendered string
		if list, ok := b.(*document.List); ok {
			if len(list.Items) == 0 {
				continue
			}
			rendered = renderList(list, seq.next(list))
		} else {
			rendered = renderBlock(b)
			if rendered == "" {
				continue
			}
			seq.reset()
		}
		out = append(out, rendered)
	}
	return out
}

// listSequence alternates markers between adjacent lists of the same kind so
// they re-import as separate lists.
type listSequence struct {
	prev *document.List
	alt  bool
}

func (s *listSequence) next(list *document.List) bool {
	alt := s.prev != nil && s.prev.Ordered == list.Ordered && !s.alt
	s.prev, s.alt = list, alt
	return alt
}

func (s *listSequence) reset() {
	s.prev, s.alt = nil, false
}

func renderBlock(b document.Block) string {
	switch n := b.(type) {
	case *document.Paragraph:
		return renderInlineBlock(n.Children, false)
	case *document.Heading:
		level := document.ClampHeadingLevel(n.Level)
		prefix := strings.Repeat("#", level)
		if content := renderInlineBlock(n.Children, true); content != "" {
			return prefix + " " + content
		}
		return prefix
	case *document.Quote:
		return renderQuote(n)
	case *document.CodeBlock:
		return renderCodeBlock(n)
	case *document.Image:
		return renderImage(n)
	case *document.HorizontalRule:
		return "---"
	case *document.List:
		return renderList(n, false)
	default:
		return ""
	}
}

func renderInlineBlock(inlines []document.Inline, heading bool) string {
	w := newInlineWriter(heading)
	w.write(inlines)
	w.closeAll()
	w.endBlock()
	return protectTrailing(w.String())
}

func renderQuote(q *document.Quote) string {
	inner := SerializeBlocks(q.Children)
	if inner == "" {
		return ">"
	}
	lines := strings.Split(inner, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
			continue
		}
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}

func renderCodeBlock(cb *document.CodeBlock) string {
	fence := strings.Repeat("`", codeFenceLength(cb.Code))
	info := cb.Language
	if info == document.LanguagePlain {
		info = ""
	}
	var b strings.Builder
	b.WriteString(fence)
	b.WriteString(info)
	b.WriteByte('\n')
	if cb.Code != "" {
		b.WriteString(cb.Code)
		b.WriteByte('\n')
	}
	b.WriteString(fence)
	return b.String()
}

// codeFenceLength returns three unless a line of code would close a fence of
// that length.
func codeFenceLength(code string) int {
	longest := 0
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		if len(line)-len(trimmed) > 3 {
			continue
		}
		run := 0
		for run < len(trimmed) && trimmed[run] == '`' {
			run++
		}
		longest = max(longest, run)
	}
	if longest >= 3 {
		return longest + 1
	}
	return 3
}

func renderImage(img *document.Image) string {
	return "![" + escapeLabel(img.Alt) + "](" + escapeDestination(img.Src) + ")"
}

func escapeLabel(text string) string {
	w := newInlineWriter(true)
	w.lineStart = false
	w.escape(text)
	return w.String()
}

// renderList renders every item. Nested content of all items shares one
// indent sized to the widest marker in the list.
func renderList(list *document.List, alt bool) string {
	widest := len(listMarker(list.Ordered, alt, len(list.Items)))
	indent := strings.Repeat(" ", max(listIndent, widest+1))
	lines := make([]string, 0, len(list.Items))
	for i, item := range list.Items {
		marker := listMarker(list.Ordered, alt, i+1)
		body := renderItem(item, indent)
		switch {
		case body == "":
			lines = append(lines, marker)
		case strings.HasPrefix(body, "\n"):
			lines = append(lines, marker+body)
		default:
			lines = append(lines, marker+" "+body)
		}
	}
	return strings.Join(lines, "\n")
}

// listIndent is the column used for nested lists and continuation lines.
const listIndent = 4

func listMarker(ordered, alt bool, n int) string {
	switch {
	case ordered && alt:
		return strconv.Itoa(n) + ")"
	case ordered:
		return strconv.Itoa(n) + "."
	case alt:
		return "*"
	default:
		return "-"
	}
}

// renderItem renders the item body. Every line but the first is indented so
// it stays inside the item.
func renderItem(item *document.ListItem, indent string) string {
	if item == nil {
		return ""
	}
	var (
		b         strings.Builder
		pending   []document.Inline
		seq       listSequence
		wrote     bool
		afterList bool
	)
	flushText := func() {
		if len(pending) == 0 {
			return
		}
		text := renderInlineBlock(pending, false)
		pending = nil
		if text == "" {
			return
		}
		if afterList {
			b.WriteString("\n\n")
			text = indentString(text, indent, true)
		} else {
			text = indentString(text, indent, false)
		}
		b.WriteString(text)
		wrote, afterList = true, false
		seq.reset()
	}
	for _, child := range item.Children {
		switch n := child.(type) {
		case *document.List:
			flushText()
			if len(n.Items) == 0 {
				continue
			}
			b.WriteByte('\n')
			b.WriteString(indentString(renderList(n, seq.next(n)), indent, true))
			wrote, afterList = true, true
		case document.Inline:
			pending = append(pending, n)
		}
	}
	flushText()
	if !wrote {
		return ""
	}
	return b.String()
}

// indentString prefixes non-empty lines with indent, skipping the first line
// unless first is set.
func indentString(s, indent string, first bool) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" || (i == 0 && !first) {
			continue
		}
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}

type mark int

const (
	markStrikethrough mark = iota
	markUnderline
	markItalic
	markBold
)

// markOrder lists marks from outermost to innermost.
var markOrder = []mark{markStrikethrough, markUnderline, markItalic, markBold}

var (
	markOpen  = map[mark]string{markStrikethrough: "~~", markUnderline: "<u>", markItalic: "*", markBold: "**"}
	markClose = map[mark]string{markStrikethrough: "~~", markUnderline: "</u>", markItalic: "*", markBold: "**"}
)

func marksOf(t *document.Text) map[mark]bool {
	return map[mark]bool{
		markStrikethrough: t.Strikethrough,
		markUnderline:     t.Underline,
		markItalic:        t.Italic,
		markBold:          t.Bold,
	}
}

// inlineWriter renders inline runs, keeping style markers open across runs
// that share them. Output is buffered as pieces so delimiter runs can be
// checked against their neighbours before the text is joined.
type inlineWriter struct {
	pieces    []piece
	open      []mark
	lineStart bool
	heading   bool
}

type pieceKind int

const (
	// pieceChar is one source character in its escaped form.
	pieceChar pieceKind = iota
	pieceOpen
	pieceClose
	// pieceRaw is markup that is never rewritten: code spans, links and tags.
	pieceRaw
)

type piece struct {
	kind pieceKind
	text string
	r    rune
}

func (p piece) delimiter() bool {
	return p.kind == pieceOpen || p.kind == pieceClose
}

func newInlineWriter(heading bool) *inlineWriter {
	return &inlineWriter{lineStart: true, heading: heading}
}

func (w *inlineWriter) String() string {
	w.flank()
	var b strings.Builder
	for _, p := range w.pieces {
		b.WriteString(p.text)
	}
	return b.String()
}

func (w *inlineWriter) write(inlines []document.Inline) {
	for _, in := range inlines {
		switch n := in.(type) {
		case *document.Text:
			if n.Content == "" {
				continue
			}
			if n.Code {
				w.closeAll()
				w.code(n.Content)
				continue
			}
			marks := marksOf(n)
			w.setMarks(marks)
			w.styled(n.Content, len(w.open) > 0)
		case *document.Link:
			w.closeAll()
			inner := &inlineWriter{heading: w.heading}
			inner.write(n.Children)
			inner.closeAll()
			w.raw("[" + inner.String() + "](" + escapeDestination(n.Href) + ")")
		}
	}
}

func (w *inlineWriter) raw(s string) {
	if s == "" {
		return
	}
	w.pieces = append(w.pieces, piece{kind: pieceRaw, text: s})
	w.lineStart = false
}

func (w *inlineWriter) char(r rune, text string) {
	w.pieces = append(w.pieces, piece{kind: pieceChar, text: text, r: r})
	w.lineStart = false
}

func (w *inlineWriter) marker(m mark, open bool) {
	text, kind := markOpen[m], pieceOpen
	if !open {
		text, kind = markClose[m], pieceClose
	}
	if m == markUnderline {
		w.raw(text)
		return
	}
	w.pieces = append(w.pieces, piece{kind: kind, text: text})
	w.lineStart = false
}

func (w *inlineWriter) setMarks(want map[mark]bool) {
	keep := len(w.open)
	for i, m := range w.open {
		if !want[m] {
			keep = i
			break
		}
	}
	for len(w.open) > keep {
		w.pop()
	}
	for _, m := range markOrder {
		if want[m] && !w.isOpen(m) {
			w.open = append(w.open, m)
			w.marker(m, true)
		}
	}
}

func (w *inlineWriter) isOpen(m mark) bool {
	for _, open := range w.open {
		if open == m {
			return true
		}
	}
	return false
}

func (w *inlineWriter) pop() {
	last := w.open[len(w.open)-1]
	w.open = w.open[:len(w.open)-1]
	w.marker(last, false)
}

func (w *inlineWriter) closeAll() {
	for len(w.open) > 0 {
		w.pop()
	}
}

// endBlock encodes a final newline, which a block boundary would swallow.
func (w *inlineWriter) endBlock() {
	if n := len(w.pieces); n > 0 && w.pieces[n-1].kind == pieceChar && w.pieces[n-1].text == "\n" {
		w.pieces[n-1].text = edgeEntity('\n')
	}
}

// styled writes run content. Inside markers the leading and trailing blanks
// are written as character references so the markers stay flanking.
func (w *inlineWriter) styled(content string, marked bool) {
	if !marked {
		w.escape(content)
		return
	}
	content = strings.ReplaceAll(content, "\r", "")
	start, end := 0, len(content)
	for start < end && isBlank(content[start]) {
		start++
	}
	for end > start && isBlank(content[end-1]) {
		end--
	}
	for i := 0; i < start; i++ {
		w.char(rune(content[i]), edgeEntity(content[i]))
	}
	w.escape(content[start:end])
	for i := end; i < len(content); i++ {
		w.char(rune(content[i]), edgeEntity(content[i]))
	}
}

func (w *inlineWriter) escape(s string) {
	for i := 0; i < len(s); {
		c := s[i]
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case c == '\r':
		case c == '\n' && (w.heading || w.lineStart):
			w.char(r, edgeEntity(c))
		case c == '\n':
			w.pieces = append(w.pieces, piece{kind: pieceChar, text: "\n", r: r})
			w.lineStart = true
		case w.lineStart && isSpaceOrTab(c):
			w.pieces = append(w.pieces, piece{kind: pieceChar, text: edgeEntity(c), r: r})
		case strings.IndexByte(alwaysEscaped, c) >= 0:
			w.char(r, "\\"+string(c))
		case w.lineStart && (c == '-' || c == '+' || c == '='):
			w.char(r, "\\"+string(c))
		case w.lineStart && isDigit(c):
			j := i
			for j < len(s) && isDigit(s[j]) {
				w.char(rune(s[j]), s[j:j+1])
				j++
			}
			if j < len(s) && (s[j] == '.' || s[j] == ')') {
				w.char(rune(s[j]), "\\"+s[j:j+1])
				j++
			}
			i = j
			continue
		default:
			w.char(r, s[i:i+size])
		}
		i += size
	}
}

// flank rewrites characters next to emphasis and strikethrough delimiter
// runs that could not open or close as written. The rewritten character is
// a numeric reference, which the parser treats as punctuation. Each rewrite
// can affect a neighbouring run, so passes repeat until nothing changes.
func (w *inlineWriter) flank() {
	for changed := true; changed; {
		changed = false
		for i := 0; i < len(w.pieces); {
			if !w.pieces[i].delimiter() {
				i++
				continue
			}
			j := i + 1
			for j < len(w.pieces) && w.pieces[j].delimiter() && w.pieces[j].text[0] == w.pieces[i].text[0] {
				j++
			}
			if w.flankRun(i, j) {
				changed = true
			}
			i = j
		}
	}
}

func (w *inlineWriter) flankRun(i, j int) bool {
	var opens, closes bool
	for _, p := range w.pieces[i:j] {
		opens = opens || p.kind == pieceOpen
		closes = closes || p.kind == pieceClose
	}
	before, after := w.runeBefore(i), w.runeAfter(j)
	changed := false
	if opens && !leftFlanking(before, after) && !util.IsSpaceRune(after) && w.encodeChar(i-1) {
		before, changed = ';', true
	}
	if closes && !rightFlanking(before, after) && !util.IsSpaceRune(before) && w.encodeChar(j) {
		changed = true
	}
	return changed
}

func (w *inlineWriter) runeBefore(i int) rune {
	if i == 0 {
		return ' '
	}
	r, _ := utf8.DecodeLastRuneInString(w.pieces[i-1].text)
	return r
}

func (w *inlineWriter) runeAfter(j int) rune {
	if j >= len(w.pieces) {
		return ' '
	}
	r, _ := utf8.DecodeRuneInString(w.pieces[j].text)
	return r
}

// encodeChar rewrites the piece at k as a numeric reference. Only literal,
// non-blank characters qualify.
func (w *inlineWriter) encodeChar(k int) bool {
	if k < 0 || k >= len(w.pieces) {
		return false
	}
	p := &w.pieces[k]
	if p.kind != pieceChar || p.text != string(p.r) || util.IsSpaceRune(p.r) {
		return false
	}
	p.text = "&#" + strconv.Itoa(int(p.r)) + ";"
	return true
}

func leftFlanking(before, after rune) bool {
	return !util.IsSpaceRune(after) &&
		(!util.IsPunctRune(after) || util.IsSpaceRune(before) || util.IsPunctRune(before))
}

func rightFlanking(before, after rune) bool {
	return !util.IsSpaceRune(before) &&
		(!util.IsPunctRune(before) || util.IsSpaceRune(after) || util.IsPunctRune(after))
}

// code writes a code span, growing the backtick fence past any run inside
// the content.
func (w *inlineWriter) code(content string) {
	content = strings.ReplaceAll(content, "\n", " ")
	longest, run := 0, 0
	for i := 0; i < len(content); i++ {
		if content[i] == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	fence := strings.Repeat("`", longest+1)
	pad := ""
	if strings.HasPrefix(content, "`") || strings.HasSuffix(content, "`") ||
		(strings.HasPrefix(content, " ") && strings.HasSuffix(content, " ") && strings.Trim(content, " ") != "") {
		pad = " "
	}
	w.raw(fence + pad + content + pad + fence)
}
