package scene

import (
	"time"
)

// FrameStatistics holds the counters of one frame. They are reset at the start of RenderFrame,
// accumulated across every camera of the frame, and read-only afterwards.
type FrameStatistics struct {
	// RenderID is the render id at the end of the frame.
	RenderID uint64

	// FrameID counts RenderFrame calls.
	FrameID uint64

	// DeltaTime is the clamped frame delta in milliseconds.
	DeltaTime float32

	// AnimationRatio is DeltaTime scaled so 1 equals a 60 frames per second frame.
	AnimationRatio float32

	FrameDuration         time.Duration
	EvaluationDuration    time.Duration
	RenderTargetsDuration time.Duration
	RenderDuration        time.Duration
	ParticlesDuration     time.Duration
	SpritesDuration       time.Duration

	DrawCalls       int
	TotalVertices   int
	ActiveVertices  int
	ActiveIndices   int
	ActiveParticles int
	ActiveBones     int
	ActiveEntities  int
	Cameras         int
}

// since adds the time elapsed from start to *d.
func since(now func() time.Time, start time.Time, d *time.Duration) {
	*d += now().Sub(start)
}
