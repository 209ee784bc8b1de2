package document

import "fmt"

// NodeID is a stable handle to a block. It survives edits elsewhere in the
// tree and stops resolving once its block is removed.
type NodeID uint64

// Start is the anchor before the first root block. It always resolves.
const Start NodeID = 0

// Document is the root of an editing session's tree.
type Document struct {
	FrontMatter map[string]any

	blocks  []Block
	ids     map[Block]NodeID
	handles map[NodeID]Block
	next    NodeID
}

// New builds a document owning blocks.
func New(blocks ...Block) *Document {
	d := &Document{}
	d.Reset(blocks)
	return d
}

// Reset replaces the whole content. Every previously issued handle stops
// resolving.
func (d *Document) Reset(blocks []Block) {
	d.blocks = make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if b != nil {
			d.blocks = append(d.blocks, b)
		}
	}
	d.ids = map[Block]NodeID{}
	d.handles = map[NodeID]Block{}
}

// Blocks returns the root blocks. The slice is a copy; the nodes are shared
// and must only be mutated through edits.
func (d *Document) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	copy(out, d.blocks)
	return out
}

// Len returns the number of root blocks.
func (d *Document) Len() int {
	return len(d.blocks)
}

// ID returns the handle of an attached block, issuing one on first use.
// Detached blocks report Start and false.
func (d *Document) ID(b Block) (NodeID, bool) {
	if b == nil {
		return Start, false
	}
	if _, _, ok := d.locate(b); !ok {
		return Start, false
	}
	return d.issue(b), true
}

// Lookup resolves a handle to its block while the block is still attached.
func (d *Document) Lookup(id NodeID) (Block, bool) {
	b, ok := d.handles[id]
	if !ok {
		return nil, false
	}
	if _, _, attached := d.locate(b); !attached {
		return nil, false
	}
	return b, true
}

// Contains reports whether id still resolves. Start always resolves.
func (d *Document) Contains(id NodeID) bool {
	if id == Start {
		return true
	}
	_, ok := d.Lookup(id)
	return ok
}

// Append adds b at the end of the root.
func (d *Document) Append(b Block) (NodeID, error) {
	if err := d.checkInsertable(b); err != nil {
		return Start, err
	}
	d.blocks = append(d.blocks, b)
	return d.issue(b), nil
}

// InsertAfter places b right after the block identified by anchor, inside the
// same container. Start inserts at the top of the root.
func (d *Document) InsertAfter(anchor NodeID, b Block) (NodeID, error) {
	if err := d.checkInsertable(b); err != nil {
		return Start, err
	}
	if anchor == Start {
		d.blocks = insertAt(d.blocks, 0, b)
		return d.issue(b), nil
	}
	target, ok := d.Lookup(anchor)
	if !ok {
		return Start, fmt.Errorf("%w: %d", ErrNodeNotFound, anchor)
	}
	container, index, _ := d.locate(target)
	*container = insertAt(*container, index+1, b)
	return d.issue(b), nil
}

// Remove detaches the block identified by id together with its subtree.
func (d *Document) Remove(id NodeID) error {
	target, ok := d.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	container, index, _ := d.locate(target)
	*container = append((*container)[:index], (*container)[index+1:]...)
	d.forget(target)
	return nil
}

// Replace swaps the block identified by id for b. The handle is transferred
// to b so cursors anchored on the old block keep resolving.
func (d *Document) Replace(id NodeID, b Block) error {
	if err := d.checkInsertable(b); err != nil {
		return err
	}
	target, ok := d.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	container, index, _ := d.locate(target)
	(*container)[index] = b
	d.forget(target)
	d.ids[b] = id
	d.handles[id] = b
	return nil
}

// Clone returns a deep copy whose handles resolve to the copied blocks.
func (d *Document) Clone() *Document {
	out := &Document{
		FrontMatter: cloneFrontMatter(d.FrontMatter),
		blocks:      make([]Block, 0, len(d.blocks)),
		ids:         make(map[Block]NodeID, len(d.ids)),
		handles:     make(map[NodeID]Block, len(d.handles)),
		next:        d.next,
	}
	for _, b := range d.blocks {
		copied := CloneBlock(b)
		out.blocks = append(out.blocks, copied)
		d.mirrorHandles(b, copied, out)
	}
	return out
}

// Restore overwrites d with the state held by snapshot.
func (d *Document) Restore(snapshot *Document) {
	*d = *snapshot
}

// TextContent concatenates the text of every node, separating blocks with a
// newline.
func (d *Document) TextContent() string {
	return TextContent(d.blocks)
}

// IsEmpty reports whether the document holds no visible content.
func (d *Document) IsEmpty() bool {
	for _, b := range d.blocks {
		switch b.(type) {
		case *Image, *HorizontalRule, *CodeBlock:
			return false
		}
	}
	return TextContent(d.blocks) == ""
}

func (d *Document) issue(b Block) NodeID {
	if id, ok := d.ids[b]; ok {
		return id
	}
	d.next++
	d.ids[b] = d.next
	d.handles[d.next] = b
	return d.next
}

func (d *Document) forget(b Block) {
	if id, ok := d.ids[b]; ok {
		delete(d.ids, b)
		delete(d.handles, id)
	}
	if q, ok := b.(*Quote); ok {
		for _, child := range q.Children {
			d.forget(child)
		}
	}
}

func (d *Document) checkInsertable(b Block) error {
	if b == nil {
		return ErrNilBlock
	}
	if _, _, ok := d.locate(b); ok {
		return ErrBlockAttached
	}
	return nil
}

func (d *Document) locate(target Block) (*[]Block, int, bool) {
	return locateIn(&d.blocks, target)
}

func (d *Document) mirrorHandles(src, dst Block, out *Document) {
	if id, ok := d.ids[src]; ok {
		out.ids[dst] = id
		out.handles[id] = dst
	}
	srcQuote, ok := src.(*Quote)
	if !ok {
		return
	}
	dstQuote := dst.(*Quote)
	for i := range srcQuote.Children {
		d.mirrorHandles(srcQuote.Children[i], dstQuote.Children[i], out)
	}
}

func locateIn(list *[]Block, target Block) (*[]Block, int, bool) {
	for i, b := range *list {
		if b == target {
			return list, i, true
		}
		if q, ok := b.(*Quote); ok {
			if container, index, found := locateIn(&q.Children, target); found {
				return container, index, true
			}
		}
	}
	return nil, -1, false
}

func insertAt(list []Block, index int, b Block) []Block {
	list = append(list, nil)
	copy(list[index+1:], list[index:])
	list[index] = b
	return list
}
