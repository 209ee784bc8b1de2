package interfaces

// MarkdownRenderer converts markdown into HTML for host previews.
type MarkdownRenderer interface {
	// Render converts markdown using the renderer's default settings.
	Render(markdown []byte) ([]byte, error)
	// RenderWithOptions converts markdown using the supplied overrides.
	RenderWithOptions(markdown []byte, opts RenderOptions) ([]byte, error)
}

// RenderOptions customises preview rendering, keeping option names readable
// for configuration unmarshalling and CLI flags.
type RenderOptions struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
}
