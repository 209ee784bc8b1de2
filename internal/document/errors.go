package document

import "errors"

var (
	// ErrNodeNotFound reports a handle whose block is no longer attached.
	ErrNodeNotFound = errors.New("document: node not found")
	// ErrNilBlock rejects inserting a nil block.
	ErrNilBlock = errors.New("document: block is nil")
	// ErrBlockAttached rejects inserting a block that already has a parent.
	ErrBlockAttached = errors.New("document: block already attached")
	// ErrInvalidSchema wraps JSON documents rejected by the document schema.
	ErrInvalidSchema = errors.New("document: json does not match schema")
)
