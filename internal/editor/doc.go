// Package editor keeps one live document per editing session in sync with its
// markdown representation. Edits are applied atomically, markdown emissions
// are debounced through a single-slot timer, and image insertions run
// asynchronously against the block that held the cursor when they were
// requested.
package editor
