package spatial

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Block is one cell of an Octree. A block either holds entries (leaf) or eight child blocks.
type Block[T comparable] struct {
	minPoint mgl32.Vec3
	maxPoint mgl32.Vec3
	corners  [8]mgl32.Vec3

	entries  []T
	blocks   []*Block[T]
	capacity int
	depth    int
	maxDepth int

	creationFunc CreationFunc[T]
}

func newBlock[T comparable](minPoint, maxPoint mgl32.Vec3, capacity, depth, maxDepth int, fn CreationFunc[T]) *Block[T] {
	return &Block[T]{
		minPoint:     minPoint,
		maxPoint:     maxPoint,
		corners:      common.BoxCorners(minPoint, maxPoint),
		capacity:     capacity,
		depth:        depth,
		maxDepth:     maxDepth,
		creationFunc: fn,
	}
}

// MinPoint returns the block's minimum corner.
func (b *Block[T]) MinPoint() mgl32.Vec3 {
	return b.minPoint
}

// MaxPoint returns the block's maximum corner.
func (b *Block[T]) MaxPoint() mgl32.Vec3 {
	return b.maxPoint
}

// Depth returns the block's depth, 1 for top-level blocks.
func (b *Block[T]) Depth() int {
	return b.depth
}

// Entries returns the entries stored in a leaf block.
func (b *Block[T]) Entries() []T {
	return b.entries
}

// Children returns the child blocks, nil for a leaf.
func (b *Block[T]) Children() []*Block[T] {
	return b.blocks
}

// Append stores entry in the block. Used by creation funcs.
func (b *Block[T]) Append(entry T) {
	b.entries = append(b.entries, entry)
}

// addEntry reports whether any leaf under b accepted the entry.
func (b *Block[T]) addEntry(entry T) bool {
	if b.blocks != nil {
		placed := false
		for _, child := range b.blocks {
			placed = child.addEntry(entry) || placed
		}
		return placed
	}

	n := len(b.entries)
	b.creationFunc(entry, b)
	placed := len(b.entries) > n

	if len(b.entries) > b.capacity && b.depth < b.maxDepth {
		b.createInnerBlocks()
	}
	return placed
}

func (b *Block[T]) removeEntry(entry T) {
	if b.blocks != nil {
		for _, child := range b.blocks {
			child.removeEntry(entry)
		}
		return
	}
	for i, e := range b.entries {
		if e == entry {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return
		}
	}
}

func (b *Block[T]) createInnerBlocks() {
	b.blocks = createBlocks(b.minPoint, b.maxPoint, b.entries, b.capacity, b.depth, b.maxDepth, b.creationFunc)
	b.entries = nil
}

func (b *Block[T]) selectFrustum(f *common.Frustum, collect func(T)) {
	if !f.IntersectsPoints(b.corners[:]) {
		return
	}
	if b.blocks != nil {
		for _, child := range b.blocks {
			child.selectFrustum(f, collect)
		}
		return
	}
	for _, e := range b.entries {
		collect(e)
	}
}

func (b *Block[T]) intersectsSphere(center mgl32.Vec3, radius float32, collect func(T)) {
	if !sphereIntersectsBox(b.minPoint, b.maxPoint, center, radius) {
		return
	}
	if b.blocks != nil {
		for _, child := range b.blocks {
			child.intersectsSphere(center, radius, collect)
		}
		return
	}
	for _, e := range b.entries {
		collect(e)
	}
}

// sphereIntersectsBox clamps the center into the box and compares the squared distance.
func sphereIntersectsBox(minPoint, maxPoint, center mgl32.Vec3, radius float32) bool {
	closest := common.MaxVec3(minPoint, common.MinVec3(center, maxPoint))
	d := center.Sub(closest)
	return d.Dot(d) <= radius*radius
}
