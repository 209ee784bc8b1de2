package editor

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-richtext/internal/media"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

// Options mirrors the host configuration of an editor widget.
type Options struct {
	// Value is the initial markdown.
	Value       string
	Placeholder string
	// Height and MinHeight are pixel sizes passed through to the host.
	Height    int
	MinHeight int
	// Debounce is the quiet period before an emission. Zero emits after
	// every edit.
	Debounce time.Duration
	// Overwrite lets SetValue replace content the user already edited.
	Overwrite bool
	// EmbedURLImages normalizes URL images into data URIs. When false URL
	// images keep their remote src. Uploads are always embedded.
	EmbedURLImages bool
}

// DefaultOptions returns a 300ms debounce with URL embedding enabled.
func DefaultOptions() Options {
	return Options{
		Debounce:       300 * time.Millisecond,
		EmbedURLImages: true,
	}
}

// Validate rejects negative sizes and windows.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Height, validation.Min(1)),
		validation.Field(&o.MinHeight, validation.Min(1)),
		validation.Field(&o.Debounce, validation.Min(time.Duration(0))),
	)
}

// Emitter receives the markdown produced after edits settle. It runs outside
// the session lock and may read the session, but must not apply edits
// synchronously.
type Emitter func(markdown string)

// Deps are the collaborators a session needs.
type Deps struct {
	Normalizer media.Normalizer
	Emitter    Emitter
	Logger     interfaces.Logger
}

// SessionOption customises a session.
type SessionOption func(*Session)

// WithClock replaces the wall clock used for debouncing.
func WithClock(clock Clock) SessionOption {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithID sets the session identifier instead of a generated one.
func WithID(id string) SessionOption {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}
