package media

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// defaultSVGSize is used when a document declares no usable viewBox.
const defaultSVGSize = 512

func isSVG(data []byte, declared string) bool {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(declared)), "image/svg") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(data[:min(len(data), 1024)]))
	if bytes.HasPrefix(head, []byte("<svg")) {
		return true
	}
	return (bytes.HasPrefix(head, []byte("<?xml")) || bytes.HasPrefix(head, []byte("<!--")) || bytes.HasPrefix(head, []byte("<!doctype svg"))) &&
		bytes.Contains(head, []byte("<svg"))
}

// rasterizeSVG draws the icon at its viewBox size, scaled down to fit within
// the bounds.
func rasterizeSVG(data []byte, maxWidth, maxHeight int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: svg: %v", ErrUnsupportedImageFormat, err)
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = defaultSVGSize, defaultSVGSize
	}
	scale := math.Min(1, math.Min(float64(maxWidth)/w, float64(maxHeight)/h))
	width := max(1, int(math.Round(w*scale)))
	height := max(1, int(math.Round(h*scale)))

	icon.SetTarget(0, 0, float64(width), float64(height))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	raster := rasterx.NewDasher(width, height, scanner)
	icon.Draw(raster, 1.0)
	return img, nil
}
