package collision

import (
	"math"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Collider sweeps an ellipsoid through the world. All internal math runs in collider space,
// where the ellipsoid is a unit sphere.
type Collider struct {
	radius mgl32.Vec3
	retry  int

	velocity            mgl32.Vec3
	velocitySquaredLen  float32
	normalizedVelocity  mgl32.Vec3
	basePoint           mgl32.Vec3
	basePointWorld      mgl32.Vec3
	velocityWorld       mgl32.Vec3
	velocityWorldLength float32
	epsilon             float32
	nearestDistance     float32
	collisionFound      bool
	intersectionPoint   mgl32.Vec3
	collidedMesh        Collidable
	initialPosition     mgl32.Vec3
	initialVelocity     mgl32.Vec3
}

// NewCollider creates a collider for an ellipsoid with the given radii.
// A zero component is replaced with 1.
//
// Parameters:
//   - radius: the ellipsoid radii
//
// Returns:
//   - *Collider: the newly created collider
func NewCollider(radius mgl32.Vec3) *Collider {
	c := &Collider{}
	c.SetRadius(radius)
	return c
}

// Radius returns the ellipsoid radii.
func (c *Collider) Radius() mgl32.Vec3 {
	return c.radius
}

// SetRadius sets the ellipsoid radii.
func (c *Collider) SetRadius(radius mgl32.Vec3) {
	for i := range 3 {
		if radius[i] == 0 {
			radius[i] = 1
		}
	}
	c.radius = radius
}

// CollisionFound reports whether the current sweep hit anything.
func (c *Collider) CollisionFound() bool {
	return c.collisionFound
}

// IntersectionPoint returns the nearest contact of the current sweep in collider space.
func (c *Collider) IntersectionPoint() mgl32.Vec3 {
	return c.intersectionPoint
}

// CollidedMesh returns the last entity hit, or nil.
func (c *Collider) CollidedMesh() Collidable {
	return c.collidedMesh
}

// BasePointWorld returns the sweep start scaled back to world space.
func (c *Collider) BasePointWorld() mgl32.Vec3 {
	return c.basePointWorld
}

// QueryRadius returns the radius of a world sphere that contains the whole sweep.
func (c *Collider) QueryRadius() float32 {
	return c.velocityWorldLength + max(c.radius[0], c.radius[1], c.radius[2])
}

func (c *Collider) initialize(source, dir mgl32.Vec3, epsilon float32) {
	c.velocity = dir
	c.velocitySquaredLen = common.LengthSquared(dir)
	l := float32(math.Sqrt(float64(c.velocitySquaredLen)))
	if l == 0 || l == 1 {
		c.normalizedVelocity = dir
	} else {
		c.normalizedVelocity = dir.Mul(1 / l)
	}
	c.basePoint = source
	c.basePointWorld = common.MulVec3(source, c.radius)
	c.velocityWorld = common.MulVec3(dir, c.radius)
	c.velocityWorldLength = c.velocityWorld.Len()
	c.epsilon = epsilon
	c.collisionFound = false
}

// CanDoCollision reports whether a world sphere and box are reachable by the sweep.
func (c *Collider) CanDoCollision(sphereCenter mgl32.Vec3, sphereRadius float32, boxMin, boxMax mgl32.Vec3) bool {
	distance := c.basePointWorld.Sub(sphereCenter).Len()
	largest := max(c.radius[0], c.radius[1], c.radius[2])
	if distance > c.velocityWorldLength+largest+sphereRadius {
		return false
	}
	return common.IntersectsBoxAASphere(boxMin, boxMax, c.basePointWorld, c.velocityWorldLength+largest)
}

func (c *Collider) canCollideWith(bi *common.BoundingInfo) bool {
	if bi == nil {
		return false
	}
	return c.CanDoCollision(bi.Sphere.CenterWorld, bi.Sphere.RadiusWorld, bi.Box.MinimumWorld, bi.Box.MaximumWorld)
}

// CheckCollidable tests the sweep against every candidate submesh of m.
//
// Parameters:
//   - m: the entity to test
func (c *Collider) CheckCollidable(m Collidable) {
	if !c.canCollideWith(m.BoundingInfo()) {
		return
	}

	scale := mgl32.Scale3D(1/c.radius[0], 1/c.radius[1], 1/c.radius[2])
	transform := scale.Mul4(m.WorldMatrix())

	candidates := m.CollisionCandidates(c.basePointWorld, c.QueryRadius())
	positions := m.Positions()
	indices := m.Indices()
	for _, sm := range candidates {
		if len(candidates) > 1 && !c.canCollideWith(sm.BoundingInfo()) {
			continue
		}
		vStart, vCount := sm.VertexRange()
		iStart, iCount := sm.IndexRange()
		cache := sm.CollisionCache()
		cache.refresh(positions, vStart, vCount, transform)
		c.collide(cache, indices, iStart, iStart+iCount, vStart, sm.HasMaterial(), m)
	}
}

func (c *Collider) collide(cache *Cache, indices []uint32, indexStart, indexEnd, decal int, hasMaterial bool, host Collidable) {
	pts := cache.vertices
	indexEnd = min(indexEnd, len(indices))
	for i := indexStart; i+2 < indexEnd; i += 3 {
		a, b, d := int(indices[i])-decal, int(indices[i+1])-decal, int(indices[i+2])-decal
		if a < 0 || b < 0 || d < 0 || a >= len(pts) || b >= len(pts) || d >= len(pts) {
			continue
		}
		c.testTriangle(i, cache.planes, pts[d], pts[b], pts[a], hasMaterial, host)
	}
}

func (c *Collider) testTriangle(face int, planes map[int]common.Plane, p1, p2, p3 mgl32.Vec3, hasMaterial bool, host Collidable) {
	plane, ok := planes[face]
	if !ok {
		plane = common.NewPlaneFromPoints(p1, p2, p3)
		planes[face] = plane
	}

	if !hasMaterial && !plane.IsFrontFacingTo(c.normalizedVelocity, 0) {
		return
	}

	signedDist := plane.SignedDistanceTo(c.basePoint)
	normalDotVelocity := plane.Normal.Dot(c.velocity)

	var t0 float32
	embedded := false
	if normalDotVelocity == 0 {
		if abs32(signedDist) >= 1 {
			return
		}
		embedded = true
	} else {
		t0 = (-1 - signedDist) / normalDotVelocity
		t1 := (1 - signedDist) / normalDotVelocity
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > 1 || t1 < 0 {
			return
		}
		t0 = common.Clamp(t0, 0, 1)
	}

	var point mgl32.Vec3
	found := false
	t := float32(1)

	if !embedded {
		hit := c.basePoint.Sub(plane.Normal).Add(c.velocity.Mul(t0))
		if checkPointInTriangle(hit, p1, p2, p3, plane.Normal) {
			found = true
			t = t0
			point = hit
		}
	}

	if !found {
		a := c.velocitySquaredLen
		for _, p := range [3]mgl32.Vec3{p1, p2, p3} {
			toBase := c.basePoint.Sub(p)
			b := 2 * c.velocity.Dot(toBase)
			cc := common.LengthSquared(toBase) - 1
			if root, ok := lowestRoot(a, b, cc, t); ok {
				t = root
				found = true
				point = p
			}
		}

		for _, e := range [3][2]mgl32.Vec3{{p1, p2}, {p2, p3}, {p3, p1}} {
			edge := e[1].Sub(e[0])
			baseToVertex := e[0].Sub(c.basePoint)
			edgeSq := common.LengthSquared(edge)
			edgeDotVel := edge.Dot(c.velocity)
			edgeDotBase := edge.Dot(baseToVertex)

			ea := edgeSq*-c.velocitySquaredLen + edgeDotVel*edgeDotVel
			eb := 2 * (edgeSq*c.velocity.Dot(baseToVertex) - edgeDotVel*edgeDotBase)
			ec := edgeSq*(1-common.LengthSquared(baseToVertex)) + edgeDotBase*edgeDotBase
			if root, ok := lowestRoot(ea, eb, ec, t); ok {
				f := (edgeDotVel*root - edgeDotBase) / edgeSq
				if f >= 0 && f <= 1 {
					t = root
					found = true
					point = e[0].Add(edge.Mul(f))
				}
			}
		}
	}

	if !found {
		return
	}
	dist := t * c.velocity.Len()
	if !c.collisionFound || dist < c.nearestDistance {
		c.intersectionPoint = point
		c.nearestDistance = dist
		c.collisionFound = true
		c.collidedMesh = host
	}
}

// response slides the remaining velocity along the plane at the nearest contact.
// It returns the new position and velocity.
func (c *Collider) response(pos, vel mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	destination := pos.Add(vel)
	vel = vel.Mul(c.nearestDistance / vel.Len())

	pos = c.basePoint.Add(vel)
	slideNormal := common.SafeNormalize(pos.Sub(c.intersectionPoint))
	displacement := slideNormal.Mul(c.epsilon)
	pos = pos.Add(displacement)
	c.intersectionPoint = c.intersectionPoint.Add(displacement)

	slideNormal = slideNormal.Mul(common.SignedDistanceToPlane(c.intersectionPoint, slideNormal, destination))
	destination = destination.Sub(slideNormal)
	return pos, destination.Sub(c.intersectionPoint)
}

func checkPointInTriangle(point, pa, pb, pc, n mgl32.Vec3) bool {
	a := pa.Sub(point)
	b := pb.Sub(point)
	if a.Cross(b).Dot(n) < 0 {
		return false
	}
	cc := pc.Sub(point)
	if b.Cross(cc).Dot(n) < 0 {
		return false
	}
	return cc.Cross(a).Dot(n) >= 0
}

// lowestRoot returns the smallest root of a*x^2 + b*x + c in (0, maxR).
func lowestRoot(a, b, c, maxR float32) (float32, bool) {
	det := b*b - 4*a*c
	if det < 0 || a == 0 {
		return 0, false
	}
	sq := float32(math.Sqrt(float64(det)))
	r1 := (-b - sq) / (2 * a)
	r2 := (-b + sq) / (2 * a)
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	if r1 > 0 && r1 < maxR {
		return r1, true
	}
	if r2 > 0 && r2 < maxR {
		return r2, true
	}
	return 0, false
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
