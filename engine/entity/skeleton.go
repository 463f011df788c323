package entity

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Transform represents a decomposed transform.
type Transform struct {
	// Translation is the position offset.
	Translation mgl32.Vec3

	// Rotation is the orientation quaternion.
	Rotation mgl32.Quat

	// Scale is the scale factor along each axis.
	Scale mgl32.Vec3
}

// IdentityTransform returns the transform that changes nothing.
func IdentityTransform() Transform {
	return Transform{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix composes translation * rotation * scale.
func (t Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2]).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// Bone represents a single bone in a skeleton hierarchy.
type Bone struct {
	// Name is the bone's identifier.
	Name string

	// ParentIndex is the index of the parent bone (-1 for root bones). Parents precede children.
	ParentIndex int32

	// InverseBindMatrix transforms from model space to bone space at bind pose.
	InverseBindMatrix mgl32.Mat4

	// LocalTransform is the bone's transform relative to its parent.
	LocalTransform Transform
}

// skeleton is the implementation of the Skeleton interface.
type skeleton struct {
	mu *sync.Mutex

	id       string
	name     string
	bones    []Bone
	world    []mgl32.Mat4
	final    []mgl32.Mat4
	dirty    bool
	prepared int
}

// Skeleton is a bone hierarchy whose final matrices are prepared once per frame for every
// skeleton referenced by an active entity.
type Skeleton interface {
	// ID returns the process-unique skeleton identifier.
	//
	// Returns:
	//   - string: the skeleton ID
	ID() string

	// Name returns the skeleton name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// BoneCount returns the number of bones.
	//
	// Returns:
	//   - int: the bone count
	BoneCount() int

	// Bones returns a copy of the bones.
	//
	// Returns:
	//   - []Bone: the bones
	Bones() []Bone

	// SetBoneTransform replaces a bone's local transform.
	//
	// Parameters:
	//   - index: the bone index
	//   - t: the new local transform
	SetBoneTransform(index int, t Transform)

	// Prepare recomputes the skinning matrices when a bone changed. Safe for concurrent use
	// with other skeletons.
	Prepare()

	// Matrices returns the skinning matrices (world * inverse bind) from the last Prepare.
	//
	// Returns:
	//   - []mgl32.Mat4: one matrix per bone
	Matrices() []mgl32.Mat4

	// PrepareCount returns how many times Prepare recomputed the matrices.
	//
	// Returns:
	//   - int: the recompute count
	PrepareCount() int
}

var _ Skeleton = &skeleton{}

// NewSkeleton creates a skeleton from bones ordered parents-first.
//
// Parameters:
//   - name: the skeleton name
//   - bones: the bone hierarchy
//
// Returns:
//   - Skeleton: the newly created skeleton
func NewSkeleton(name string, bones []Bone) Skeleton {
	for i, b := range bones {
		if int(b.ParentIndex) >= i {
			panic("entity: NewSkeleton requires parent bones to precede their children")
		}
	}
	return &skeleton{
		mu:    &sync.Mutex{},
		id:    uuid.NewString(),
		name:  name,
		bones: append([]Bone(nil), bones...),
		world: make([]mgl32.Mat4, len(bones)),
		final: make([]mgl32.Mat4, len(bones)),
		dirty: true,
	}
}

func (s *skeleton) ID() string {
	return s.id
}

func (s *skeleton) Name() string {
	return s.name
}

func (s *skeleton) BoneCount() int {
	return len(s.bones)
}

func (s *skeleton) Bones() []Bone {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Bone(nil), s.bones...)
}

func (s *skeleton) SetBoneTransform(index int, t Transform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.bones) {
		return
	}
	s.bones[index].LocalTransform = t
	s.dirty = true
}

func (s *skeleton) Prepare() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return
	}
	for i, b := range s.bones {
		local := b.LocalTransform.Matrix()
		if b.ParentIndex >= 0 {
			s.world[i] = s.world[b.ParentIndex].Mul4(local)
		} else {
			s.world[i] = local
		}
		s.final[i] = s.world[i].Mul4(b.InverseBindMatrix)
	}
	s.dirty = false
	s.prepared++
}

func (s *skeleton) Matrices() []mgl32.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mgl32.Mat4(nil), s.final...)
}

func (s *skeleton) PrepareCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prepared
}
