package editor

import "github.com/goliatone/go-richtext/internal/document"

// Edit mutates the live document. A returned error rolls the document back to
// its state before the edit.
type Edit func(doc *document.Document) error

// InsertBlock places b after anchor. document.Start inserts at the top.
func InsertBlock(anchor document.NodeID, b document.Block) Edit {
	return func(doc *document.Document) error {
		_, err := doc.InsertAfter(anchor, b)
		return err
	}
}

// AppendBlock adds b at the end of the document.
func AppendBlock(b document.Block) Edit {
	return func(doc *document.Document) error {
		_, err := doc.Append(b)
		return err
	}
}

// DeleteBlock removes the block identified by id.
func DeleteBlock(id document.NodeID) Edit {
	return func(doc *document.Document) error {
		return doc.Remove(id)
	}
}

// ReplaceBlock swaps the block identified by id for b, keeping the handle.
func ReplaceBlock(id document.NodeID, b document.Block) Edit {
	return func(doc *document.Document) error {
		return doc.Replace(id, b)
	}
}

// Batch applies edits in order as a single edit.
func Batch(edits ...Edit) Edit {
	return func(doc *document.Document) error {
		for _, edit := range edits {
			if edit == nil {
				return ErrNilEdit
			}
			if err := edit(doc); err != nil {
				return err
			}
		}
		return nil
	}
}
