package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-richtext/internal/adapters/noop"
	"github.com/goliatone/go-richtext/internal/document"
	"github.com/goliatone/go-richtext/internal/logging"
	"github.com/goliatone/go-richtext/internal/markdown"
	"github.com/goliatone/go-richtext/internal/media"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

// Session owns the live document of one editor instance.
type Session struct {
	id           string
	opts         Options
	normalizer   media.Normalizer
	emit         Emitter
	logger       interfaces.Logger
	clock        Clock
	deserializer *markdown.Deserializer

	mu          sync.Mutex
	doc         *document.Document
	cursor      document.NodeID
	recoveries  []markdown.Recovery
	lastValue   string
	lastEmitted string
	timer       Timer
	generation  uint64
	pending     bool
	seq         uint64
	closed      bool

	emitMu    sync.Mutex
	delivered uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Open validates opts and deserializes the initial value once. The cursor
// starts after the last block.
func Open(opts Options, deps Deps, sessionOpts ...SessionOption) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("editor: invalid options: %w", err)
	}

	s := &Session{
		id:         uuid.NewString(),
		opts:       opts,
		normalizer: deps.Normalizer,
		emit:       deps.Emitter,
		logger:     deps.Logger,
		clock:      realClock{},
	}
	for _, opt := range sessionOpts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NoOp()
	}
	s.logger = logging.WithSessionContext(s.logger, s.id, "")
	if s.emit == nil {
		s.emit = noop.Emitter()
	}
	if s.normalizer == nil {
		normalizer, err := media.NewNormalizer(media.DefaultConfig(), media.WithLogger(s.logger))
		if err != nil {
			return nil, err
		}
		s.normalizer = normalizer
	}
	s.deserializer = markdown.NewDeserializer(s.logger)
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.load(opts.Value)
	s.logger.Debug("editor.opened", "blocks", s.doc.Len(), "recoveries", len(s.recoveries))
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Options returns the options the session was opened with.
func (s *Session) Options() Options {
	return s.opts
}

// Placeholder returns the placeholder text and whether it should be shown.
func (s *Session) Placeholder() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Placeholder, s.opts.Placeholder != "" && s.doc.IsEmpty()
}

// Recoveries lists the irregularities absorbed while importing the current
// value.
func (s *Session) Recoveries() []markdown.Recovery {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]markdown.Recovery, len(s.recoveries))
	copy(out, s.recoveries)
	return out
}

// Apply runs edit against the live document. A failing edit leaves the
// document as it was; a successful one schedules an emission.
func (s *Session) Apply(edit Edit) error {
	if edit == nil {
		return ErrNilEdit
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	snapshot := s.doc.Clone()
	if err := edit(s.doc); err != nil {
		s.doc.Restore(snapshot)
		s.mu.Unlock()
		s.logger.Debug("editor.edit.rejected", "error", err)
		return err
	}
	s.scheduleAndUnlock()
	return nil
}

// Cursor returns the handle of the block holding the cursor.
func (s *Session) Cursor() document.NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// MoveCursor places the cursor on the block identified by id.
func (s *Session) MoveCursor(id document.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if !s.doc.Contains(id) {
		return fmt.Errorf("%w: %d", document.ErrNodeNotFound, id)
	}
	s.cursor = id
	return nil
}

// SetValue applies a host-side change of the value option. The content is
// replaced only when the editor is empty or Overwrite is set; echoes of the
// last emitted or applied value are ignored. It reports whether the content
// changed.
func (s *Session) SetValue(value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrSessionClosed
	}
	if value == s.lastValue || (s.seq > 0 && value == s.lastEmitted) {
		return false, nil
	}
	if !s.opts.Overwrite && !s.doc.IsEmpty() {
		return false, nil
	}
	s.generation++
	s.pending = false
	s.stopTimerLocked()
	s.load(value)
	return true, nil
}

// Value serializes the live document.
func (s *Session) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return markdown.Serialize(s.doc)
}

// Snapshot returns a deep copy of the live document for inspection.
func (s *Session) Snapshot() *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Flush emits a pending debounced value immediately. It reports whether an
// emission was pending.
func (s *Session) Flush() bool {
	s.mu.Lock()
	if s.closed || !s.pending {
		s.mu.Unlock()
		return false
	}
	s.generation++
	s.stopTimerLocked()
	s.emitAndUnlock()
	return true
}

// Close cancels in-flight image work, drops any pending emission and waits
// for background goroutines to finish.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.generation++
	s.pending = false
	s.stopTimerLocked()
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.logger.Debug("editor.closed")
	return nil
}

// load replaces the document with the parsed value. Callers hold mu.
func (s *Session) load(value string) {
	doc, recoveries := s.deserializer.Inspect(value)
	s.doc = doc
	s.recoveries = recoveries
	s.lastValue = value
	s.cursor = document.Start
	if blocks := doc.Blocks(); len(blocks) > 0 {
		s.cursor, _ = doc.ID(blocks[len(blocks)-1])
	}
}

// scheduleAndUnlock restarts the debounce window, or emits right away when
// debouncing is disabled. Callers hold mu; it is released on return.
func (s *Session) scheduleAndUnlock() {
	s.generation++
	s.stopTimerLocked()
	if s.opts.Debounce <= 0 {
		s.emitAndUnlock()
		return
	}
	s.pending = true
	generation := s.generation
	s.timer = s.clock.AfterFunc(s.opts.Debounce, func() { s.fire(generation) })
	s.mu.Unlock()
}

func (s *Session) fire(generation uint64) {
	s.mu.Lock()
	if s.closed || !s.pending || generation != s.generation {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.emitAndUnlock()
}

// emitAndUnlock serializes the document under mu and hands it to the emitter
// after releasing mu. Emissions overtaken by a newer one are dropped.
func (s *Session) emitAndUnlock() {
	s.pending = false
	value := markdown.Serialize(s.doc)
	s.lastEmitted = value
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	if seq <= s.delivered {
		return
	}
	s.delivered = seq
	s.logger.Debug("editor.emit", "bytes", len(value))
	s.emit(value)
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
