package editor

import (
	"context"

	"github.com/goliatone/go-richtext/internal/document"
	"github.com/goliatone/go-richtext/internal/media"
)

// ImageRequest asks for an image to be inserted at the cursor.
type ImageRequest struct {
	Source media.Source
	Alt    string
}

// ImageResult reports the outcome of an insertion. On success ID and Image
// identify the inserted block; on failure Err is tagged with SurfaceError
// and the document is unchanged.
type ImageResult struct {
	ID    document.NodeID
	Image *document.Image
	Err   error
}

// InsertImage captures the cursor block and prepares the image in the
// background. The image lands right after the captured block, or the
// request fails with ErrInsertionTargetGone if that block was deleted in the
// meantime. URL sources skip normalization when EmbedURLImages is off. The
// returned channel yields exactly one result.
func (s *Session) InsertImage(ctx context.Context, req ImageRequest) <-chan ImageResult {
	out := make(chan ImageResult, 1)
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		out <- ImageResult{Err: ErrSessionClosed}
		return out
	}
	anchor := s.cursor

	if req.Source.Kind == media.SourceURL && !s.opts.EmbedURLImages {
		img := &document.Image{Src: req.Source.Location, Alt: req.Alt}
		out <- s.insertAndUnlock(anchor, img)
		return out
	}

	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		out <- s.prepare(ctx, anchor, req)
	}()
	return out
}

func (s *Session) prepare(ctx context.Context, anchor document.NodeID, req ImageRequest) ImageResult {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	logger := s.logger.WithContext(ctx)
	result, err := s.normalizer.Normalize(ctx, req.Source)
	if err != nil {
		logger.Warn("editor.image.failed", "source", string(req.Source.Kind), "error", err)
		return ImageResult{Err: SurfaceError(err)}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ImageResult{Err: ErrSessionClosed}
	}
	return s.insertAndUnlock(anchor, &document.Image{Src: result.DataURI, Alt: req.Alt})
}

// insertAndUnlock places img after anchor. Callers hold mu; it is released
// on return. The cursor follows the image when it has not moved since the
// request.
func (s *Session) insertAndUnlock(anchor document.NodeID, img *document.Image) ImageResult {
	if !s.doc.Contains(anchor) {
		s.mu.Unlock()
		s.logger.Info("editor.image.dropped", "anchor", uint64(anchor))
		return ImageResult{Err: SurfaceError(ErrInsertionTargetGone)}
	}
	id, err := s.doc.InsertAfter(anchor, img)
	if err != nil {
		s.mu.Unlock()
		return ImageResult{Err: err}
	}
	if s.cursor == anchor {
		s.cursor = id
	}
	s.scheduleAndUnlock()
	return ImageResult{ID: id, Image: img}
}
