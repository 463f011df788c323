package spatial

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type box struct {
	name string
	info *common.BoundingInfo
}

func (b *box) BoundingInfo() *common.BoundingInfo { return b.info }

func newBox(name string, center mgl32.Vec3, half float32) *box {
	h := mgl32.Vec3{half, half, half}
	return &box{name: name, info: common.NewBoundingInfo(center.Sub(h), center.Add(h))}
}

func testFrustum() *common.Frustum {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	f := common.ExtractFrustumFromMatrix(proj.Mul4(view))
	return &f
}

func TestOctree_UpdateCreatesEightBlocks(t *testing.T) {
	o := NewOctree[*box](BoundingBoxCreationFunc[*box])
	o.Update(mgl32.Vec3{-10, -10, -10}, mgl32.Vec3{10, 10, 10}, nil)

	blocks := o.Blocks()
	require.Len(t, blocks, 8)
	for _, b := range blocks {
		assert.Equal(t, 1, b.Depth())
		assert.Nil(t, b.Children())
	}
	assert.Equal(t, mgl32.Vec3{-10, -10, -10}, blocks[0].MinPoint())
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, blocks[0].MaxPoint())
}

func TestOctree_SubdividesOverCapacity(t *testing.T) {
	o := NewOctree[*box](BoundingBoxCreationFunc[*box], WithMaxCapacity[*box](2), WithMaxDepth[*box](2))

	var entries []*box
	for i := range 3 {
		entries = append(entries, newBox("b", mgl32.Vec3{-5 - float32(i)*0.1, -5, -5}, 0.01))
	}
	o.Update(mgl32.Vec3{-10, -10, -10}, mgl32.Vec3{10, 10, 10}, entries)

	first := o.Blocks()[0]
	require.Len(t, first.Children(), 8)
	assert.Nil(t, first.Entries())
	for _, child := range first.Children() {
		assert.Equal(t, 2, child.Depth())
		assert.Nil(t, child.Children(), "depth limit stops further subdivision")
	}
}

func TestOctree_SelectDedupsAndCulls(t *testing.T) {
	o := NewOctree[*box](BoundingBoxCreationFunc[*box])

	// Straddles every top-level block.
	center := newBox("center", mgl32.Vec3{}, 1)
	behind := newBox("behind", mgl32.Vec3{0, 0, 40}, 1)
	o.Update(mgl32.Vec3{-50, -50, -50}, mgl32.Vec3{50, 50, 50}, []*box{center, behind})

	got := o.Select(testFrustum())
	assert.Contains(t, got, center)
	count := 0
	for _, e := range got {
		if e == center {
			count++
		}
	}
	assert.Equal(t, 1, count)

	// Leaves that hold "behind" also hold nothing visible, but the block test is coarse:
	// selection may over-include, it must never omit visible entries.
	all := NewOctree[*box](BoundingBoxCreationFunc[*box], WithAllowDuplicates[*box](true))
	all.Update(mgl32.Vec3{-50, -50, -50}, mgl32.Vec3{50, 50, 50}, []*box{center})
	assert.Greater(t, len(all.Select(testFrustum())), 1)
}

func TestOctree_SelectNeverOmitsVisible(t *testing.T) {
	o := NewOctree[*box](BoundingBoxCreationFunc[*box], WithMaxCapacity[*box](1), WithMaxDepth[*box](3))
	f := testFrustum()

	var entries []*box
	for x := -20; x <= 20; x += 4 {
		for z := -20; z <= 20; z += 4 {
			entries = append(entries, newBox("grid", mgl32.Vec3{float32(x), 0, float32(z)}, 0.5))
		}
	}
	o.Update(mgl32.Vec3{-25, -25, -25}, mgl32.Vec3{25, 25, 25}, entries)

	selected := map[*box]bool{}
	for _, e := range o.Select(f) {
		selected[e] = true
	}
	for _, e := range entries {
		if e.info.IsInFrustum(f, common.CullingStandard) {
			assert.True(t, selected[e], "visible entry missing from selection")
		}
	}
}

func TestOctree_IntersectsSphere(t *testing.T) {
	o := NewOctree[*box](BoundingBoxCreationFunc[*box])
	near := newBox("near", mgl32.Vec3{5, 5, 5}, 0.5)
	far := newBox("far", mgl32.Vec3{-5, -5, -5}, 0.5)
	o.Update(mgl32.Vec3{-10, -10, -10}, mgl32.Vec3{10, 10, 10}, []*box{near, far})

	got := o.Intersects(mgl32.Vec3{5, 5, 5}, 1)
	assert.Equal(t, []*box{near}, got)
}

func TestOctree_DynamicContentAlwaysReturned(t *testing.T) {
	o := NewOctree[*box](BoundingBoxCreationFunc[*box])
	o.Update(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}, nil)
	dyn := newBox("dyn", mgl32.Vec3{0, 0, 500}, 1)
	o.SetDynamicContent([]*box{dyn})

	assert.Equal(t, []*box{dyn}, o.Select(testFrustum()))
}

func TestOctree_AddRemoveEntry(t *testing.T) {
	o := NewOctree[*box](BoundingBoxCreationFunc[*box])
	o.Update(mgl32.Vec3{-10, -10, -10}, mgl32.Vec3{10, 10, 10}, nil)
	b := newBox("b", mgl32.Vec3{}, 1)

	o.AddEntry(b)
	assert.Equal(t, []*box{b}, o.Intersects(mgl32.Vec3{}, 1))

	o.RemoveEntry(b)
	assert.Empty(t, o.Intersects(mgl32.Vec3{}, 1))
}

func TestOctree_AddEntryOutsideExtents(t *testing.T) {
	o := NewOctree[*box](BoundingBoxCreationFunc[*box])
	o.Update(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}, nil)
	far := newBox("far", mgl32.Vec3{0, 0, -20}, 1)

	o.AddEntry(far)
	o.AddEntry(far)
	assert.Equal(t, []*box{far}, o.Select(testFrustum()))
	assert.Equal(t, []*box{far}, o.Intersects(mgl32.Vec3{}, 1))

	o.RemoveEntry(far)
	assert.Empty(t, o.Select(testFrustum()))

	o.AddEntry(far)
	o.Update(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}, nil)
	assert.Empty(t, o.Select(testFrustum()))
}

func TestNewOctree_PanicsOnNilCreationFunc(t *testing.T) {
	assert.Panics(t, func() { NewOctree[*box](nil) })
}
