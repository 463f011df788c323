package spatial

import (
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultMaxCapacity is the number of entries a block holds before it subdivides.
	DefaultMaxCapacity = 64

	// DefaultMaxDepth is the deepest subdivision level.
	DefaultMaxDepth = 2
)

// Index is a swappable acceleration structure over world-space entries.
// Select may over-include but never omits an entry whose bounds intersect the frustum.
type Index[T comparable] interface {
	// Update rebuilds the structure over the world extents [minimum, maximum].
	//
	// Parameters:
	//   - minimum, maximum: the world extents to partition
	//   - entries: the entries to distribute
	Update(minimum, maximum mgl32.Vec3, entries []T)

	// Select returns the candidate entries for a frustum.
	//
	// Parameters:
	//   - f: the frustum planes
	//
	// Returns:
	//   - []T: the candidates, valid until the next Select call
	Select(f *common.Frustum) []T
}

// Bounded is satisfied by anything carrying world-space bounding info.
type Bounded interface {
	BoundingInfo() *common.BoundingInfo
}

// CreationFunc decides whether entry belongs in block and appends it.
type CreationFunc[T comparable] func(entry T, block *Block[T])

// BoundingBoxCreationFunc adds an entry to every block its world bounding box overlaps.
func BoundingBoxCreationFunc[T interface {
	comparable
	Bounded
}](entry T, block *Block[T]) {
	bi := entry.BoundingInfo()
	if bi == nil {
		return
	}
	if bi.Box.IntersectsMinMax(block.MinPoint(), block.MaxPoint()) {
		block.Append(entry)
	}
}

// Octree partitions world space into eight blocks per level, subdividing a block once it
// exceeds its capacity and the depth limit allows. An entry is stored in every leaf it overlaps.
type Octree[T comparable] struct {
	mu *sync.Mutex

	blocks         []*Block[T]
	dynamicContent []T
	outside        []T
	maxCapacity    int
	maxDepth       int
	allowDuplicate bool
	creationFunc   CreationFunc[T]

	selection []T
	seen      map[T]struct{}
}

var _ Index[int] = &Octree[int]{}

// NewOctree creates an empty octree. Call Update to populate it.
//
// Parameters:
//   - creationFunc: decides block membership for an entry (must not be nil)
//   - options: functional options to configure the octree
//
// Returns:
//   - *Octree[T]: the newly created octree
func NewOctree[T comparable](creationFunc CreationFunc[T], options ...OctreeBuilderOption[T]) *Octree[T] {
	if creationFunc == nil {
		panic("spatial: NewOctree requires a non-nil CreationFunc")
	}
	o := &Octree[T]{
		mu:           &sync.Mutex{},
		maxCapacity:  DefaultMaxCapacity,
		maxDepth:     DefaultMaxDepth,
		creationFunc: creationFunc,
		seen:         make(map[T]struct{}),
	}
	for _, option := range options {
		option(o)
	}
	return o
}

// MaxCapacity returns the block capacity.
func (o *Octree[T]) MaxCapacity() int {
	return o.maxCapacity
}

// MaxDepth returns the subdivision depth limit.
func (o *Octree[T]) MaxDepth() int {
	return o.maxDepth
}

// Blocks returns the top-level blocks.
func (o *Octree[T]) Blocks() []*Block[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.blocks
}

// SetDynamicContent sets entries that every query returns regardless of position.
func (o *Octree[T]) SetDynamicContent(entries []T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dynamicContent = append(o.dynamicContent[:0], entries...)
}

func (o *Octree[T]) Update(minimum, maximum mgl32.Vec3, entries []T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.blocks = createBlocks(minimum, maximum, entries, o.maxCapacity, 0, o.maxDepth, o.creationFunc)
	o.outside = o.outside[:0]
}

// AddEntry inserts one entry into the existing blocks without a rebuild. An entry that no
// block accepts lies outside the built extents and is returned by every query until the
// next Update.
func (o *Octree[T]) AddEntry(entry T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	placed := false
	for _, b := range o.blocks {
		placed = b.addEntry(entry) || placed
	}
	if !placed && !slices.Contains(o.outside, entry) {
		o.outside = append(o.outside, entry)
	}
}

// RemoveEntry removes an entry from every block.
func (o *Octree[T]) RemoveEntry(entry T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, b := range o.blocks {
		b.removeEntry(entry)
	}
	o.outside = slices.DeleteFunc(o.outside, func(e T) bool { return e == entry })
}

func (o *Octree[T]) Select(f *common.Frustum) []T {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.resetSelection()
	for _, b := range o.blocks {
		b.selectFrustum(f, o.collect)
	}
	for _, e := range o.dynamicContent {
		o.collect(e)
	}
	for _, e := range o.outside {
		o.collect(e)
	}
	return o.selection
}

// Intersects returns the entries of every leaf overlapping the sphere.
//
// Parameters:
//   - center: the sphere center in world space
//   - radius: the sphere radius
//
// Returns:
//   - []T: the candidates, valid until the next query
func (o *Octree[T]) Intersects(center mgl32.Vec3, radius float32) []T {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.resetSelection()
	for _, b := range o.blocks {
		b.intersectsSphere(center, radius, o.collect)
	}
	for _, e := range o.dynamicContent {
		o.collect(e)
	}
	for _, e := range o.outside {
		o.collect(e)
	}
	return o.selection
}

func (o *Octree[T]) resetSelection() {
	o.selection = o.selection[:0]
	clear(o.seen)
}

func (o *Octree[T]) collect(entry T) {
	if !o.allowDuplicate {
		if _, ok := o.seen[entry]; ok {
			return
		}
		o.seen[entry] = struct{}{}
	}
	o.selection = append(o.selection, entry)
}

// createBlocks splits [minimum, maximum] into eight equal blocks at currentDepth+1.
func createBlocks[T comparable](minimum, maximum mgl32.Vec3, entries []T, capacity, currentDepth, maxDepth int, fn CreationFunc[T]) []*Block[T] {
	size := maximum.Sub(minimum).Mul(0.5)
	blocks := make([]*Block[T], 0, 8)
	for x := range 2 {
		for y := range 2 {
			for z := range 2 {
				localMin := minimum.Add(common.MulVec3(size, mgl32.Vec3{float32(x), float32(y), float32(z)}))
				localMax := minimum.Add(common.MulVec3(size, mgl32.Vec3{float32(x + 1), float32(y + 1), float32(z + 1)}))
				b := newBlock(localMin, localMax, capacity, currentDepth+1, maxDepth, fn)
				for _, e := range entries {
					b.addEntry(e)
				}
				blocks = append(blocks, b)
			}
		}
	}
	return blocks
}
