package camera

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
)

// NewStereoRig turns parent into a side-by-side stereo rig. Two sub-cameras are created,
// left and right eye, each covering one half of the parent's viewport and offset by half
// the interaxial distance along the parent's right axis.
//
// Parameters:
//   - parent: the camera to turn into a rig
//   - interaxial: distance between the two eyes in world units
//
// Returns:
//   - left, right: the created sub-cameras
func NewStereoRig(parent Camera, interaxial float32) (left, right Camera) {
	vp := parent.Viewport()
	half := vp.Width / 2

	opts := func(v common.Viewport) []CameraBuilderOption {
		return []CameraBuilderOption{
			WithViewport(v),
			WithFov(parent.Fov()),
			WithAspect(parent.Aspect()),
			WithNear(parent.Near()),
			WithFar(parent.Far()),
			WithUp(parent.Up()),
			WithLayerMask(parent.LayerMask()),
		}
	}

	left = NewCamera(parent.Name()+"_left", opts(common.Viewport{X: vp.X, Y: vp.Y, Width: half, Height: vp.Height})...)
	right = NewCamera(parent.Name()+"_right", opts(common.Viewport{X: vp.X + half, Y: vp.Y, Width: half, Height: vp.Height})...)

	parent.AddSubCamera(left, -interaxial/2)
	parent.AddSubCamera(right, interaxial/2)
	return left, right
}
