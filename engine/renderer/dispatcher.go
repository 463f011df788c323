package renderer

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MinRenderingGroupID is the lowest rendering group id.
	MinRenderingGroupID = 0

	// MaxRenderingGroups is the number of rendering groups. Ids outside the range are clamped.
	MaxRenderingGroups = 4
)

// GroupHooks are invoked for every rendering group between the alpha-tested and transparent
// buckets, in group order. Nil hooks are skipped.
type GroupHooks struct {
	Sprites   func(groupID int) error
	Particles func(groupID int) error
}

// bucket holds the submeshes dispatched with one material, in dispatch order.
type bucket struct {
	material entity.Material
	items    []*entity.SubMesh
}

type renderingGroup struct {
	opaque      []*bucket
	alphaTest   []*bucket
	transparent []*entity.SubMesh
	index       map[entity.Material]*bucket
}

func (g *renderingGroup) reset() {
	g.opaque = g.opaque[:0]
	g.alphaTest = g.alphaTest[:0]
	g.transparent = g.transparent[:0]
	clear(g.index)
}

func (g *renderingGroup) empty() bool {
	return len(g.opaque) == 0 && len(g.alphaTest) == 0 && len(g.transparent) == 0
}

// dispatcherImpl is the implementation of the RenderDispatcher interface.
type dispatcherImpl struct {
	groups    [MaxRenderingGroups]renderingGroup
	autoClear [MaxRenderingGroups]bool
	renderID  uint64
	count     int
}

// RenderDispatcher buckets the submeshes selected by evaluation and draws them in rendering
// group order. It makes no visibility decisions of its own.
//
// Within a group, buckets render opaque, then alpha-tested, then the group hooks, then
// transparent. Opaque and alpha-tested submeshes are batched by material in first-dispatch
// order. Transparent submeshes are sorted by alpha index descending (higher draws first), then
// by camera distance with the farthest first.
type RenderDispatcher interface {
	// Reset empties every bucket and records the render id whose activations are drawn.
	//
	// Parameters:
	//   - renderID: the render id of the evaluation pass being recorded
	Reset(renderID uint64)

	// Dispatch adds a submesh to the bucket of its rendering group and material. Submeshes
	// without a material are ignored.
	//
	// Parameters:
	//   - sm: the submesh to draw
	Dispatch(sm *entity.SubMesh)

	// Render draws every bucket through the backend.
	//
	// Parameters:
	//   - b: the backend to draw with
	//   - cam: the camera whose transform and position drive the draws
	//   - hooks: per-group callbacks run before the transparent bucket
	//
	// Returns:
	//   - int: the number of draws issued
	//   - error: the first backend or hook error
	Render(b Backend, cam camera.Camera, hooks GroupHooks) (int, error)

	// Items returns the submeshes in a bucket in the order they will be drawn, excluding the
	// distance sort for transparent submeshes, which needs a camera.
	//
	// Parameters:
	//   - groupID: the rendering group (clamped)
	//   - mode: the bucket
	//
	// Returns:
	//   - []*entity.SubMesh: the submeshes
	Items(groupID int, mode BlendMode) []*entity.SubMesh

	// Len returns the number of dispatched submeshes.
	Len() int

	// SetAutoClearDepthStencil controls whether depth and stencil are cleared before a
	// non-empty group renders. Group 0 is never cleared by the dispatcher.
	//
	// Parameters:
	//   - groupID: the rendering group (clamped)
	//   - clear: true to clear
	SetAutoClearDepthStencil(groupID int, clear bool)
}

var _ RenderDispatcher = &dispatcherImpl{}

// NewRenderDispatcher creates a dispatcher with depth clears between groups enabled.
//
// Parameters:
//   - options: functional options to configure the dispatcher
//
// Returns:
//   - RenderDispatcher: the new dispatcher
func NewRenderDispatcher(options ...DispatcherBuilderOption) RenderDispatcher {
	d := &dispatcherImpl{}
	for i := range d.groups {
		d.groups[i].index = make(map[entity.Material]*bucket)
		d.autoClear[i] = true
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// ClampGroupID maps a rendering group id into [MinRenderingGroupID, MaxRenderingGroups-1].
func ClampGroupID(id int) int {
	return min(max(id, MinRenderingGroupID), MaxRenderingGroups-1)
}

// ModeFor returns the bucket a submesh of mesh renders in with material m.
//
// Parameters:
//   - m: the resolved submesh material
//   - mesh: the owning mesh
//
// Returns:
//   - BlendMode: the bucket
func ModeFor(m entity.Material, mesh entity.Mesh) BlendMode {
	switch {
	case m.NeedAlphaBlending() || mesh.Visibility() < 1:
		return BlendAlpha
	case m.NeedAlphaTesting():
		return BlendAlphaTest
	default:
		return BlendOpaque
	}
}

func (d *dispatcherImpl) Reset(renderID uint64) {
	for i := range d.groups {
		d.groups[i].reset()
	}
	d.renderID = renderID
	d.count = 0
}

func (d *dispatcherImpl) Dispatch(sm *entity.SubMesh) {
	if sm == nil {
		return
	}
	mat := sm.Material()
	if mat == nil {
		return
	}
	owner := sm.Owner()
	g := &d.groups[ClampGroupID(owner.RenderGroupID())]
	d.count++

	mode := ModeFor(mat, owner)
	if mode == BlendAlpha {
		g.transparent = append(g.transparent, sm)
		return
	}
	bk := g.index[mat]
	if bk == nil {
		bk = &bucket{material: mat}
		g.index[mat] = bk
		if mode == BlendAlphaTest {
			g.alphaTest = append(g.alphaTest, bk)
		} else {
			g.opaque = append(g.opaque, bk)
		}
	}
	bk.items = append(bk.items, sm)
}

func (d *dispatcherImpl) Items(groupID int, mode BlendMode) []*entity.SubMesh {
	g := &d.groups[ClampGroupID(groupID)]
	switch mode {
	case BlendAlpha:
		out := slices.Clone(g.transparent)
		slices.SortStableFunc(out, func(a, b *entity.SubMesh) int {
			return cmp.Compare(b.Owner().AlphaIndex(), a.Owner().AlphaIndex())
		})
		return out
	case BlendAlphaTest:
		return flatten(g.alphaTest)
	default:
		return flatten(g.opaque)
	}
}

func (d *dispatcherImpl) Len() int {
	return d.count
}

func (d *dispatcherImpl) SetAutoClearDepthStencil(groupID int, clear bool) {
	d.autoClear[ClampGroupID(groupID)] = clear
}

func (d *dispatcherImpl) Render(b Backend, cam camera.Camera, hooks GroupHooks) (int, error) {
	if cam == nil {
		return 0, fmt.Errorf("renderer: render requires a camera")
	}
	viewProj := cam.TransformMatrix()
	eye := cam.Position()
	draws := 0

	for id := range d.groups {
		g := &d.groups[id]
		if !g.empty() {
			if id > MinRenderingGroupID && d.autoClear[id] {
				b.Clear(common.Color4{}, false, true, true)
			}
			for _, bk := range g.opaque {
				n, err := d.drawAll(b, bk.items, id, BlendOpaque, bk.material, viewProj)
				draws += n
				if err != nil {
					return draws, err
				}
			}
			for _, bk := range g.alphaTest {
				n, err := d.drawAll(b, bk.items, id, BlendAlphaTest, bk.material, viewProj)
				draws += n
				if err != nil {
					return draws, err
				}
			}
		}

		if hooks.Sprites != nil {
			if err := hooks.Sprites(id); err != nil {
				return draws, fmt.Errorf("renderer: sprites for group %d: %w", id, err)
			}
		}
		if hooks.Particles != nil {
			if err := hooks.Particles(id); err != nil {
				return draws, fmt.Errorf("renderer: particles for group %d: %w", id, err)
			}
		}

		if len(g.transparent) == 0 {
			continue
		}
		sorted := sortTransparent(g.transparent, eye)
		for _, sm := range sorted {
			n, err := d.drawAll(b, []*entity.SubMesh{sm}, id, BlendAlpha, sm.Material(), viewProj)
			draws += n
			if err != nil {
				return draws, err
			}
		}
	}
	return draws, nil
}

func (d *dispatcherImpl) drawAll(b Backend, items []*entity.SubMesh, groupID int, mode BlendMode, mat entity.Material, viewProj mgl32.Mat4) (int, error) {
	draws := 0
	for _, sm := range items {
		owner := sm.Owner()
		worlds := owner.RenderWorlds(d.renderID)
		if len(worlds) == 0 {
			worlds = append(worlds, owner.WorldMatrix())
		}
		err := b.Draw(DrawItem{
			SubMesh:        sm,
			Mesh:           owner,
			Material:       mat,
			GroupID:        groupID,
			Mode:           mode,
			ViewProjection: viewProj,
			Worlds:         worlds,
		})
		if err != nil {
			return draws, fmt.Errorf("renderer: draw %q: %w", owner.Name(), err)
		}
		draws++
	}
	return draws, nil
}

type sortEntry struct {
	sm         *entity.SubMesh
	alphaIndex int
	distance   float32
}

// sortTransparent orders transparent submeshes by alpha index descending, then farthest first.
// Ties keep dispatch order.
func sortTransparent(items []*entity.SubMesh, eye mgl32.Vec3) []*entity.SubMesh {
	entries := make([]sortEntry, len(items))
	for i, sm := range items {
		c := sm.BoundingInfo().Sphere.CenterWorld
		entries[i] = sortEntry{
			sm:         sm,
			alphaIndex: sm.Owner().AlphaIndex(),
			distance:   c.Sub(eye).Len(),
		}
	}
	slices.SortStableFunc(entries, func(a, b sortEntry) int {
		if c := cmp.Compare(b.alphaIndex, a.alphaIndex); c != 0 {
			return c
		}
		return cmp.Compare(b.distance, a.distance)
	})
	out := make([]*entity.SubMesh, len(entries))
	for i, e := range entries {
		out[i] = e.sm
	}
	return out
}

func flatten(buckets []*bucket) []*entity.SubMesh {
	var out []*entity.SubMesh
	for _, bk := range buckets {
		out = append(out, bk.items...)
	}
	return out
}
