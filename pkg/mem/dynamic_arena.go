package mem

import (
	"container/list"

	"github.com/lumen-render/lumen/pkg/core"
)

// dynamicNode is one variable-size block in the arena. The backing slice
// is grown in place when a reused node is too small for the next request.
type dynamicNode struct {
	buffer []byte
}

// DynamicArena allocates variable-size byte regions from a linked list of
// nodes. FreeAll rewinds the cursor so subsequent allocations reuse (and
// resize) existing nodes in order; Destroy releases everything.
type DynamicArena struct {
	nodes  *list.List
	cursor *list.Element
}

// NewDynamicArena creates an empty arena
func NewDynamicArena() *DynamicArena {
	return &DynamicArena{nodes: list.New()}
}

// Alloc returns a zeroed region of the given size whose offset within its
// block satisfies the given alignment. Alignment must be a power of two.
func (a *DynamicArena) Alloc(size, align int) ([]byte, error) {
	if size <= 0 || align <= 0 || align&(align-1) != 0 {
		return nil, core.ErrInvalidArgument
	}

	node, err := a.nextNode(size)
	if err != nil {
		return nil, err
	}

	region := node.buffer[:size]
	for i := range region {
		region[i] = 0
	}
	return region, nil
}

// AllocWithHeader returns two regions carved from a single block: a
// header and a payload, each padded to its own alignment. Alignments
// must be powers of two.
func (a *DynamicArena) AllocWithHeader(headerSize, headerAlign, dataSize, dataAlign int) ([]byte, []byte, error) {
	if headerSize <= 0 || headerAlign <= 0 || headerAlign&(headerAlign-1) != 0 {
		return nil, nil, core.ErrInvalidArgument
	}
	if dataSize < 0 || dataAlign < 0 {
		return nil, nil, core.ErrInvalidArgument
	}
	if dataSize > 0 && (dataAlign == 0 || dataAlign&(dataAlign-1) != 0) {
		return nil, nil, core.ErrInvalidArgumentCombination
	}

	dataOffset := 0
	total := headerSize
	if dataSize > 0 {
		dataOffset = alignUp(headerSize, dataAlign)
		if dataOffset < headerSize {
			return nil, nil, core.ErrIntegerOverflow
		}
		total = dataOffset + dataSize
		if total < dataOffset {
			return nil, nil, core.ErrIntegerOverflow
		}
	}

	node, err := a.nextNode(total)
	if err != nil {
		return nil, nil, err
	}

	block := node.buffer[:total]
	for i := range block {
		block[i] = 0
	}

	header := block[:headerSize]
	if dataSize == 0 {
		return header, nil, nil
	}
	return header, block[dataOffset : dataOffset+dataSize], nil
}

// FreeAll rewinds the cursor; nodes are retained for reuse
func (a *DynamicArena) FreeAll() {
	a.cursor = nil
}

// Destroy releases every node
func (a *DynamicArena) Destroy() {
	a.nodes.Init()
	a.cursor = nil
}

// nextNode returns the next free node, resizing its backing store if the
// request is larger, or appends a fresh node at the end of the list.
func (a *DynamicArena) nextNode(size int) (*dynamicNode, error) {
	var next *list.Element
	if a.cursor == nil {
		next = a.nodes.Front()
	} else {
		next = a.cursor.Next()
	}

	if next != nil {
		node := next.Value.(*dynamicNode)
		if cap(node.buffer) < size {
			node.buffer = make([]byte, size)
		} else {
			node.buffer = node.buffer[:cap(node.buffer)]
		}
		a.cursor = next
		return node, nil
	}

	node := &dynamicNode{buffer: make([]byte, size)}
	a.cursor = a.nodes.PushBack(node)
	return node, nil
}

func alignUp(offset, align int) int {
	return (offset + align - 1) &^ (align - 1)
}
