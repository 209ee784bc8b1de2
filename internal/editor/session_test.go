package editor_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-richtext/internal/document"
	"github.com/goliatone/go-richtext/internal/editor"
	"github.com/goliatone/go-richtext/internal/media"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) editor.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves time forward, firing due timers in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()
	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.fn()
	}
}

type emission struct {
	value string
	at    time.Duration
}

type recorder struct {
	mu    sync.Mutex
	clock *fakeClock
	out   []emission
}

func (r *recorder) emit(value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var at time.Duration
	if r.clock != nil {
		at = r.clock.Now()
	}
	r.out = append(r.out, emission{value: value, at: at})
}

func (r *recorder) emissions() []emission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]emission(nil), r.out...)
}

type stubNormalizer struct {
	release chan struct{}
	calls   atomic.Int32
	src     string
	err     error
}

func (n *stubNormalizer) Normalize(ctx context.Context, src media.Source) (*media.Result, error) {
	n.calls.Add(1)
	if n.release != nil {
		select {
		case <-n.release:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", media.ErrImageFetch, ctx.Err())
		}
	}
	if n.err != nil {
		return nil, n.err
	}
	uri := n.src
	if uri == "" {
		uri = "data:image/jpeg;base64,AAAA"
	}
	return &media.Result{DataURI: uri, MIMEType: "image/jpeg"}, nil
}

func openSession(t *testing.T, opts editor.Options, deps editor.Deps, clock *fakeClock) *editor.Session {
	t.Helper()
	var sessionOpts []editor.SessionOption
	if clock != nil {
		sessionOpts = append(sessionOpts, editor.WithClock(clock))
	}
	if deps.Normalizer == nil {
		deps.Normalizer = &stubNormalizer{}
	}
	s, err := editor.Open(opts, deps, sessionOpts...)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func paragraph(text string) *document.Paragraph {
	return document.NewParagraph(document.Plain(text))
}

func TestDebounceCoalescesBurstIntoOneEmission(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorder{clock: clock}
	s := openSession(t, editor.Options{Debounce: 300 * time.Millisecond}, editor.Deps{Emitter: rec.emit}, clock)

	for i, text := range []string{"one", "two", "three"} {
		if i > 0 {
			clock.Advance(50 * time.Millisecond)
		}
		if err := s.Apply(editor.AppendBlock(paragraph(text))); err != nil {
			t.Fatalf("apply %s: %v", text, err)
		}
	}

	clock.Advance(299 * time.Millisecond)
	if got := rec.emissions(); len(got) != 0 {
		t.Fatalf("expected no emission before the window closes, got %v", got)
	}

	clock.Advance(time.Second)
	got := rec.emissions()
	if len(got) != 1 {
		t.Fatalf("expected exactly one emission, got %d", len(got))
	}
	if got[0].at != 400*time.Millisecond {
		t.Fatalf("expected emission at 400ms, got %v", got[0].at)
	}
	if got[0].value != "one\n\ntwo\n\nthree" {
		t.Fatalf("unexpected emitted value %q", got[0].value)
	}
}

func TestZeroDebounceEmitsAfterEveryEdit(t *testing.T) {
	rec := &recorder{}
	s := openSession(t, editor.Options{}, editor.Deps{Emitter: rec.emit}, nil)

	_ = s.Apply(editor.AppendBlock(paragraph("a")))
	_ = s.Apply(editor.AppendBlock(paragraph("b")))

	got := rec.emissions()
	if len(got) != 2 || got[0].value != "a" || got[1].value != "a\n\nb" {
		t.Fatalf("unexpected emissions %v", got)
	}
}

func TestFlushEmitsPendingValue(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorder{clock: clock}
	s := openSession(t, editor.Options{Debounce: 300 * time.Millisecond}, editor.Deps{Emitter: rec.emit}, clock)

	if s.Flush() {
		t.Fatalf("expected nothing to flush")
	}
	_ = s.Apply(editor.AppendBlock(paragraph("a")))
	if !s.Flush() {
		t.Fatalf("expected pending emission to flush")
	}
	clock.Advance(time.Second)
	if got := rec.emissions(); len(got) != 1 || got[0].at != 0 {
		t.Fatalf("expected a single immediate emission, got %v", got)
	}
}

func TestApplyRollsBackFailedEdit(t *testing.T) {
	rec := &recorder{}
	s := openSession(t, editor.Options{Value: "# Title"}, editor.Deps{Emitter: rec.emit}, nil)
	before := s.Value()

	err := s.Apply(editor.Batch(
		editor.AppendBlock(paragraph("added")),
		editor.DeleteBlock(document.NodeID(999)),
	))
	if !errors.Is(err, document.ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
	if s.Value() != before {
		t.Fatalf("expected document unchanged, got %q", s.Value())
	}
	if len(rec.emissions()) != 0 {
		t.Fatalf("expected failed edit not to emit")
	}
	if err := s.Apply(nil); !errors.Is(err, editor.ErrNilEdit) {
		t.Fatalf("expected ErrNilEdit, got %v", err)
	}
}

func TestSetValueRespectsOverwriteAndEchoes(t *testing.T) {
	rec := &recorder{}
	s := openSession(t, editor.Options{}, editor.Deps{Emitter: rec.emit}, nil)

	changed, err := s.SetValue("# Hello")
	if err != nil || !changed {
		t.Fatalf("expected empty editor to accept value, changed=%v err=%v", changed, err)
	}
	if changed, _ := s.SetValue("# Other"); changed {
		t.Fatalf("expected edited content to be kept without overwrite")
	}

	o := openSession(t, editor.Options{Value: "a", Overwrite: true}, editor.Deps{Emitter: rec.emit}, nil)
	if changed, _ := o.SetValue("b"); !changed || o.Value() != "b" {
		t.Fatalf("expected overwrite to replace content, got %q", o.Value())
	}
	_ = o.Apply(editor.AppendBlock(paragraph("c")))
	emitted := rec.emissions()
	last := emitted[len(emitted)-1].value
	if changed, _ := o.SetValue(last); changed {
		t.Fatalf("expected echo of emitted value to be ignored")
	}
}

func TestPlaceholderShownOnlyWhenEmpty(t *testing.T) {
	s := openSession(t, editor.Options{Placeholder: "Write here"}, editor.Deps{}, nil)
	if text, show := s.Placeholder(); !show || text != "Write here" {
		t.Fatalf("expected placeholder on empty document")
	}
	_ = s.Apply(editor.AppendBlock(paragraph("x")))
	if _, show := s.Placeholder(); show {
		t.Fatalf("expected placeholder hidden once content exists")
	}
}

func TestOpenRejectsInvalidOptions(t *testing.T) {
	if _, err := editor.Open(editor.Options{Debounce: -time.Millisecond}, editor.Deps{}); err == nil {
		t.Fatalf("expected negative debounce to be rejected")
	}
	if _, err := editor.Open(editor.Options{Height: -1}, editor.Deps{}); err == nil {
		t.Fatalf("expected negative height to be rejected")
	}
}

func TestOpenRecordsImportRecoveries(t *testing.T) {
	s := openSession(t, editor.Options{Value: "```klingon\nx\n```"}, editor.Deps{}, nil)
	recoveries := s.Recoveries()
	if len(recoveries) != 1 {
		t.Fatalf("expected one recovery, got %v", recoveries)
	}
	blocks := s.Snapshot().Blocks()
	if cb, ok := blocks[0].(*document.CodeBlock); !ok || cb.Language != document.LanguagePlain {
		t.Fatalf("expected plain code block, got %#v", blocks[0])
	}
}

func TestClosedSessionRejectsWork(t *testing.T) {
	s := openSession(t, editor.Options{}, editor.Deps{}, nil)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Apply(editor.AppendBlock(paragraph("x"))); !errors.Is(err, editor.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
	if _, err := s.SetValue("x"); !errors.Is(err, editor.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed from SetValue, got %v", err)
	}
}

func TestSurfaceErrorTagsImageFailures(t *testing.T) {
	err := editor.SurfaceError(fmt.Errorf("wrap: %w", media.ErrImageTooLarge))
	if !goerrors.IsCategory(err, editor.CategoryImage) {
		t.Fatalf("expected image category, got %v", err)
	}
	if !errors.Is(err, media.ErrImageTooLarge) {
		t.Fatalf("expected sentinel to stay reachable")
	}
	plain := errors.New("other")
	if editor.SurfaceError(plain) != plain {
		t.Fatalf("expected unrelated errors to pass through")
	}
}
