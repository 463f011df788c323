package renderer

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// drawShaderSource draws position-only geometry with per-instance world matrices and a flat
// material color. The uniform matches GPUDrawUniform.
const drawShaderSource = `struct DrawUniform {
    view_proj: mat4x4<f32>,
    color: vec4<f32>,
};

@group(0) @binding(0) var<uniform> draw: DrawUniform;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
};

@vertex
fn vs_main(
    @location(0) position: vec3<f32>,
    @location(1) m0: vec4<f32>,
    @location(2) m1: vec4<f32>,
    @location(3) m2: vec4<f32>,
    @location(4) m3: vec4<f32>,
) -> VertexOutput {
    let world = mat4x4<f32>(m0, m1, m2, m3);
    var out: VertexOutput;
    out.position = draw.view_proj * world * vec4<f32>(position, 1.0);
    out.color = draw.color;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.color;
}
`

// GPUDrawUniform is the GPU-aligned per-draw uniform.
// Size: 80 bytes (WGSL aligned).
type GPUDrawUniform struct {
	ViewProj [16]float32 // offset  0: view-projection matrix (mat4x4<f32>)
	Color    [4]float32  // offset 64: material color (vec4<f32>)
}

// Size returns the size of the GPUDrawUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPUDrawUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUDrawUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewProj[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.Color[i]))
	}
	return buf
}

// marshalMatrices packs column-major matrices back to back, 64 bytes each.
func marshalMatrices(ms []mgl32.Mat4) []byte {
	buf := make([]byte, len(ms)*64)
	for i, m := range ms {
		for j := range 16 {
			binary.LittleEndian.PutUint32(buf[i*64+j*4:], math.Float32bits(m[j]))
		}
	}
	return buf
}

// marshalPositions packs positions as tightly packed vec3<f32>.
func marshalPositions(ps []mgl32.Vec3) []byte {
	buf := make([]byte, len(ps)*12)
	for i, p := range ps {
		for j := range 3 {
			binary.LittleEndian.PutUint32(buf[i*12+j*4:], math.Float32bits(p[j]))
		}
	}
	return buf
}

// marshalIndices packs indices as little-endian uint32.
func marshalIndices(idx []uint32) []byte {
	buf := make([]byte, len(idx)*4)
	for i, v := range idx {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}
