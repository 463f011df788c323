package entity

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
)

// LODLevel swaps in Mesh when the camera is farther than Distance. A nil Mesh culls the entity.
type LODLevel struct {
	Distance float32
	Mesh     Mesh
}

type lodLevels []LODLevel

// add inserts a level and keeps the list sorted by descending distance.
func (l *lodLevels) add(distance float32, m Mesh) {
	*l = append(*l, LODLevel{Distance: distance, Mesh: m})
	sort.SliceStable(*l, func(i, j int) bool { return (*l)[i].Distance > (*l)[j].Distance })
}

func (l *lodLevels) remove(m Mesh) {
	out := (*l)[:0]
	for _, level := range *l {
		if level.Mesh != m {
			out = append(out, level)
		}
	}
	*l = out
}

// resolve returns the level mesh for the distance between the bounding sphere and the camera.
// ok is false when no level applies and the owner renders itself.
func (l lodLevels) resolve(owner Entity, cam camera.Camera) (m Mesh, ok bool) {
	if len(l) == 0 || cam == nil {
		return nil, false
	}
	bi := owner.BoundingInfo()
	if bi == nil {
		return nil, false
	}
	d := bi.Sphere.CenterWorld.Sub(cam.Position()).Len()
	if l[len(l)-1].Distance > d {
		return nil, false
	}
	for _, level := range l {
		if level.Distance < d {
			return level.Mesh, true
		}
	}
	return nil, false
}
