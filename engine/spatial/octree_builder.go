package spatial

// OctreeBuilderOption is a functional option for configuring an Octree.
type OctreeBuilderOption[T comparable] func(*Octree[T])

// WithMaxCapacity sets the number of entries a block holds before subdividing.
// Values < 1 are treated as DefaultMaxCapacity.
//
// Parameters:
//   - capacity: the block capacity
//
// Returns:
//   - OctreeBuilderOption[T]: option function to apply
func WithMaxCapacity[T comparable](capacity int) OctreeBuilderOption[T] {
	return func(o *Octree[T]) {
		if capacity < 1 {
			capacity = DefaultMaxCapacity
		}
		o.maxCapacity = capacity
	}
}

// WithMaxDepth sets the deepest subdivision level. Values < 1 are treated as 1.
//
// Parameters:
//   - depth: the depth limit
//
// Returns:
//   - OctreeBuilderOption[T]: option function to apply
func WithMaxDepth[T comparable](depth int) OctreeBuilderOption[T] {
	return func(o *Octree[T]) {
		if depth < 1 {
			depth = 1
		}
		o.maxDepth = depth
	}
}

// WithAllowDuplicates makes queries return an entry once per leaf it is stored in.
//
// Parameters:
//   - allow: true to skip deduplication
//
// Returns:
//   - OctreeBuilderOption[T]: option function to apply
func WithAllowDuplicates[T comparable](allow bool) OctreeBuilderOption[T] {
	return func(o *Octree[T]) {
		o.allowDuplicate = allow
	}
}
