package noop

// Emitter returns a markdown sink that discards every emission.
func Emitter() func(string) {
	return func(string) {}
}
