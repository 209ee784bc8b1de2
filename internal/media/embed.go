package media

import (
	"context"
	"strings"

	"github.com/goliatone/go-richtext/internal/document"
)

// EmbedRemoteImages normalizes every image block whose src is an http(s)
// URL and replaces it with an embedded copy. Images are replaced, never
// mutated. The document is only changed when every image succeeds; the
// first failure is returned and the document is left as it was. It returns
// the number of images embedded.
func EmbedRemoteImages(ctx context.Context, n Normalizer, doc *document.Document) (int, error) {
	if doc == nil {
		return 0, nil
	}
	var remote []*document.Image
	document.Walk(doc.Blocks(), func(node document.Node) bool {
		if img, ok := node.(*document.Image); ok && isRemote(img.Src) {
			remote = append(remote, img)
		}
		return true
	})

	replacements := make(map[document.NodeID]*document.Image, len(remote))
	for _, img := range remote {
		id, ok := doc.ID(img)
		if !ok {
			continue
		}
		result, err := n.Normalize(ctx, FromURL(img.Src))
		if err != nil {
			return 0, err
		}
		replacements[id] = &document.Image{Src: result.DataURI, Alt: img.Alt}
	}

	for id, img := range replacements {
		if err := doc.Replace(id, img); err != nil {
			return 0, err
		}
	}
	return len(replacements), nil
}

func isRemote(src string) bool {
	lower := strings.ToLower(strings.TrimSpace(src))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
