package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendertarget"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// boxEdges indexes the corners produced by common.BoxCorners as a line list.
var boxEdges = [24]uint32{
	0, 2, 0, 3, 0, 4,
	1, 5, 1, 6, 1, 7,
	2, 5, 2, 7, 3, 5,
	3, 6, 4, 6, 4, 7,
}

var boundingBoxColor = [4]float32{1, 1, 1, 1}

type pipelineKey struct {
	mode       BlendMode
	lines      bool
	samples    uint32
	depthWrite bool
}

type meshBuffers struct {
	vertex      *wgpu.Buffer
	index       *wgpu.Buffer
	vertexCount int
	indexCount  int
}

// offscreen holds the attachments of one render target.
type offscreen struct {
	target        rendertarget.RenderTarget
	width, height int
	color         *wgpu.Texture
	colorView     *wgpu.TextureView
	depth         *wgpu.Texture
	depthView     *wgpu.TextureView
}

func (o *offscreen) release() {
	o.colorView.Release()
	o.color.Release()
	o.depthView.Release()
	o.depth.Release()
}

type pendingClear struct {
	color      common.Color4
	backBuffer bool
	depth      bool
}

type wgpuBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	sampleCount   MSAASampleCount
	width, height int

	msaaTexture      *wgpu.Texture
	msaaTextureView  *wgpu.TextureView
	depthTexture     *wgpu.Texture
	depthTextureView *wgpu.TextureView

	shader          *wgpu.ShaderModule
	bindGroupLayout *wgpu.BindGroupLayout
	pipelineLayout  *wgpu.PipelineLayout
	pipelines       map[pipelineKey]*wgpu.RenderPipeline

	meshes  map[string]*meshBuffers
	targets map[string]*offscreen

	// Frame state for batched rendering across multiple passes
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	transientBuffers []*wgpu.Buffer
	transientGroups  []*wgpu.BindGroup

	bound      *offscreen
	clear      pendingClear
	viewport   common.Viewport
	depthWrite bool
	resizeErr  error
}

var _ Backend = &wgpuBackendImpl{}

// NewWGPUBackend creates a Backend drawing to a WebGPU surface.
// The surface descriptor is platform-specific and is typically obtained from Window.SurfaceDescriptor().
//
// Parameters:
//   - surfaceDescriptor: the platform-specific surface descriptor for WebGPU surface creation
//   - width, height: the initial surface size in pixels
//   - options: functional options to configure the backend
//
// Returns:
//   - Backend: the backend
//   - error: an error if no adapter or device could be acquired, or the draw pipeline failed to build
func NewWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...WGPUBackendOption) (Backend, error) {
	runtime.LockOSThread()

	cfg := wgpuConfig{presentMode: PresentModeVSync, sampleCount: MSAAOff}
	for _, opt := range options {
		opt(&cfg)
	}

	b := &wgpuBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		sampleCount: cfg.sampleCount,
		pipelines:   make(map[pipelineKey]*wgpu.RenderPipeline),
		meshes:      make(map[string]*meshBuffers),
		targets:     make(map[string]*offscreen),
		viewport:    common.FullViewport,
		depthWrite:  true,
	}
	b.setPresentMode(cfg.presentMode)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	if err := b.configureSurface(width, height); err != nil {
		return nil, err
	}
	if err := b.createPipelineLayout(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *wgpuBackendImpl) setPresentMode(mode PresentMode) {
	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuBackendImpl) configureSurface(width, height int) error {
	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return errors.New("renderer: surface reports no formats")
	}
	b.surfaceFormat = capabilities.Formats[0]
	b.width, b.height = width, height

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.msaaTexture != nil {
		b.msaaTextureView.Release()
		b.msaaTexture.Release()
		b.msaaTexture, b.msaaTextureView = nil, nil
	}
	if b.depthTexture != nil {
		b.depthTextureView.Release()
		b.depthTexture.Release()
	}

	count := uint32(b.sampleCount)
	if count > 1 {
		// The render pass draws into the MSAA texture and resolves into the swapchain view.
		tex, view, err := b.createAttachment("MSAA Texture", width, height, count, b.surfaceFormat, wgpu.TextureUsageRenderAttachment)
		if err != nil {
			return err
		}
		b.msaaTexture, b.msaaTextureView = tex, view
	}

	// Depth texture sample count must match the color attachment.
	tex, view, err := b.createAttachment("Depth Texture", width, height, count, wgpu.TextureFormatDepth24Plus, wgpu.TextureUsageRenderAttachment)
	if err != nil {
		return err
	}
	b.depthTexture, b.depthTextureView = tex, view
	return nil
}

func (b *wgpuBackendImpl) createAttachment(label string, width, height int, samples uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(max(width, 1)),
			Height:             uint32(max(height, 1)),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("renderer: create %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("renderer: create %s view: %w", label, err)
	}
	return tex, view, nil
}

func (b *wgpuBackendImpl) createPipelineLayout() error {
	shader, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Draw Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: drawShaderSource,
		},
	})
	if err != nil {
		return fmt.Errorf("renderer: create shader: %w", err)
	}
	b.shader = shader

	var u GPUDrawUniform
	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Draw Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(u.Size()),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("renderer: create bind group layout: %w", err)
	}
	b.bindGroupLayout = layout

	pl, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Draw Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return fmt.Errorf("renderer: create pipeline layout: %w", err)
	}
	b.pipelineLayout = pl
	return nil
}

// pipeline returns the cached pipeline for key, creating it on first use.
func (b *wgpuBackendImpl) pipeline(key pipelineKey) (*wgpu.RenderPipeline, error) {
	if p, ok := b.pipelines[key]; ok {
		return p, nil
	}

	color := wgpu.ColorTargetState{
		Format:    b.surfaceFormat,
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if key.mode == BlendAlpha {
		color.Blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	}

	topology := wgpu.PrimitiveTopologyTriangleList
	cull := wgpu.CullModeBack
	if key.lines {
		topology = wgpu.PrimitiveTopologyLineList
		cull = wgpu.CullModeNone
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("%s Render Pipeline", key.mode),
		Layout: b.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     b.shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: 12,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					},
				},
				{
					ArrayStride: 64,
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 1},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 4},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     b.shader,
			EntryPoint: "fs_main",
			Targets:    []wgpu.ColorTargetState{color},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topology,
			FrontFace: wgpu.FrontFaceCW,
			CullMode:  cull,
		},
		Multisample: wgpu.MultisampleState{
			Count: key.samples,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: key.depthWrite,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create pipeline: %w", err)
	}
	b.pipelines[key] = created
	return created, nil
}

func (b *wgpuBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If a previous frame's surface texture is still held, acquiring another one fails in
	// wgpu-native with "Surface image is already acquired".
	if b.frameSurface != nil {
		return ErrFrameInFlight
	}
	if err := b.resizeErr; err != nil {
		b.resizeErr = nil
		return err
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	b.bound = nil
	b.viewport = common.FullViewport
	b.depthWrite = true
	return nil
}

// beginPass opens a render pass on the bound framebuffer, applying any pending clear.
func (b *wgpuBackendImpl) beginPass() {
	if b.framePass != nil || b.frameEncoder == nil {
		return
	}

	colorLoad, depthLoad := wgpu.LoadOpLoad, wgpu.LoadOpLoad
	if b.clear.backBuffer {
		colorLoad = wgpu.LoadOpClear
	}
	if b.clear.depth {
		depthLoad = wgpu.LoadOpClear
	}
	c := b.clear.color
	attachment := wgpu.RenderPassColorAttachment{
		LoadOp:     colorLoad,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: wgpu.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)},
	}
	depthView := b.depthTextureView
	width, height := b.width, b.height

	switch {
	case b.bound != nil:
		attachment.View = b.bound.colorView
		depthView = b.bound.depthView
		width, height = b.bound.width, b.bound.height
	case b.sampleCount > 1:
		// The MSAA texture is the color attachment and the swapchain view is the resolve target.
		attachment.View = b.msaaTextureView
		attachment.ResolveTarget = b.frameView
	default:
		attachment.View = b.frameView
	}

	b.framePass = b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{attachment},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            depthView,
			DepthLoadOp:     depthLoad,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	b.clear = pendingClear{}
	x, y, w, h := b.viewport.ToPixels(width, height)
	b.framePass.SetViewport(x, y, w, h, 0, 1)
}

func (b *wgpuBackendImpl) endPass() {
	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil
}

// flush applies a pending clear and closes the open pass.
func (b *wgpuBackendImpl) flush() {
	if b.clear.backBuffer || b.clear.depth {
		b.beginPass()
	}
	b.endPass()
}

func (b *wgpuBackendImpl) Clear(color common.Color4, backBuffer, depth, stencil bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.endPass()
	if backBuffer {
		b.clear.backBuffer = true
		b.clear.color = color
	}
	// Depth24Plus carries no stencil aspect; a stencil clear clears depth.
	if depth || stencil {
		b.clear.depth = true
	}
}

func (b *wgpuBackendImpl) SetViewport(v common.Viewport) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.viewport = v
	if b.framePass == nil {
		return
	}
	width, height := b.width, b.height
	if b.bound != nil {
		width, height = b.bound.width, b.bound.height
	}
	x, y, w, h := v.ToPixels(width, height)
	b.framePass.SetViewport(x, y, w, h, 0, 1)
}

func (b *wgpuBackendImpl) SetDepthWrite(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.depthWrite = enabled
}

func (b *wgpuBackendImpl) BindRenderTarget(t rendertarget.RenderTarget) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.flush()
	width, height := t.Size()
	o, ok := b.targets[t.ID()]
	if ok && (o.width != width || o.height != height) {
		o.release()
		ok = false
	}
	if !ok {
		color, colorView, err := b.createAttachment(t.Name()+" Color", width, height, 1, b.surfaceFormat,
			wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
		if err != nil {
			return err
		}
		depth, depthView, err := b.createAttachment(t.Name()+" Depth", width, height, 1, wgpu.TextureFormatDepth24Plus,
			wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
		if err != nil {
			colorView.Release()
			color.Release()
			return err
		}
		o = &offscreen{target: t, width: width, height: height, color: color, colorView: colorView, depth: depth, depthView: depthView}
		b.targets[t.ID()] = o
	}
	b.bound = o
	return nil
}

// releaseDisposedTargets frees the attachments of disposed targets. Runs between frames.
func (b *wgpuBackendImpl) releaseDisposedTargets() {
	for id, o := range b.targets {
		if o.target.IsDisposed() {
			o.release()
			delete(b.targets, id)
		}
	}
}

func (b *wgpuBackendImpl) RestoreDefaultFramebuffer() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bound == nil {
		return
	}
	b.flush()
	b.bound = nil
}

func (b *wgpuBackendImpl) samples() uint32 {
	if b.bound != nil {
		return 1
	}
	return uint32(b.sampleCount)
}

// meshBuffers returns the GPU geometry for m, uploading it when missing or resized.
func (b *wgpuBackendImpl) meshBuffers(m entity.Mesh) (*meshBuffers, error) {
	positions, indices := m.Positions(), m.Indices()
	mb, ok := b.meshes[m.UniqueID()]
	if ok && mb.vertexCount == len(positions) && mb.indexCount == len(indices) {
		return mb, nil
	}
	if ok {
		mb.vertex.Release()
		mb.index.Release()
	}

	vertex, err := b.upload(m.Name()+" Vertex Buffer", marshalPositions(positions), wgpu.BufferUsageVertex)
	if err != nil {
		return nil, err
	}
	index, err := b.upload(m.Name()+" Index Buffer", marshalIndices(indices), wgpu.BufferUsageIndex)
	if err != nil {
		vertex.Release()
		return nil, err
	}
	mb = &meshBuffers{vertex: vertex, index: index, vertexCount: len(positions), indexCount: len(indices)}
	b.meshes[m.UniqueID()] = mb
	if !ok {
		m.OnDispose().Add(func(entity.Entity) { b.releaseMesh(m.UniqueID()) })
	}
	return mb, nil
}

func (b *wgpuBackendImpl) releaseMesh(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if mb, ok := b.meshes[id]; ok {
		mb.vertex.Release()
		mb.index.Release()
		delete(b.meshes, id)
	}
}

func (b *wgpuBackendImpl) upload(label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(max(len(data), 4)),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create %s: %w", label, err)
	}
	if len(data) > 0 {
		b.queue.WriteBuffer(buf, 0, data)
	}
	return buf, nil
}

// uniformBindGroup uploads a per-draw uniform and binds it. Both live until EndFrame.
func (b *wgpuBackendImpl) uniformBindGroup(u GPUDrawUniform) (*wgpu.BindGroup, error) {
	buf, err := b.upload("Draw Uniform", u.Marshal(), wgpu.BufferUsageUniform)
	if err != nil {
		return nil, err
	}
	b.transientBuffers = append(b.transientBuffers, buf)

	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Draw Bind Group",
		Layout: b.bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buf, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create bind group: %w", err)
	}
	b.transientGroups = append(b.transientGroups, group)
	return group, nil
}

func (b *wgpuBackendImpl) Draw(item DrawItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return errors.New("renderer: draw outside a frame")
	}
	if item.SubMesh == nil || item.Material == nil || len(item.Worlds) == 0 {
		return nil
	}

	p, err := b.pipeline(pipelineKey{
		mode:       item.Mode,
		samples:    b.samples(),
		depthWrite: b.depthWrite && item.Mode != BlendAlpha,
	})
	if err != nil {
		return err
	}
	mb, err := b.meshBuffers(item.Mesh)
	if err != nil {
		return err
	}
	group, err := b.uniformBindGroup(GPUDrawUniform{ViewProj: item.ViewProjection, Color: item.Material.BaseColor()})
	if err != nil {
		return err
	}
	instances, err := b.upload("Instance Buffer", marshalMatrices(item.Worlds), wgpu.BufferUsageVertex)
	if err != nil {
		return err
	}
	b.transientBuffers = append(b.transientBuffers, instances)

	b.beginPass()
	b.framePass.SetPipeline(p)
	b.framePass.SetBindGroup(0, group, nil)
	b.framePass.SetVertexBuffer(0, mb.vertex, 0, wgpu.WholeSize)
	b.framePass.SetVertexBuffer(1, instances, 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(mb.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(item.SubMesh.IndexCount), uint32(len(item.Worlds)), uint32(item.SubMesh.IndexStart), 0, 0)
	return nil
}

func (b *wgpuBackendImpl) DrawBoundingBoxes(viewProjection mgl32.Mat4, boxes []*common.BoundingBox) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return errors.New("renderer: draw outside a frame")
	}
	if len(boxes) == 0 {
		return nil
	}

	positions := make([]mgl32.Vec3, 0, len(boxes)*8)
	indices := make([]uint32, 0, len(boxes)*len(boxEdges))
	for _, box := range boxes {
		base := uint32(len(positions))
		positions = append(positions, box.VectorsWorld[:]...)
		for _, e := range boxEdges {
			indices = append(indices, base+e)
		}
	}

	p, err := b.pipeline(pipelineKey{mode: BlendOpaque, lines: true, samples: b.samples(), depthWrite: false})
	if err != nil {
		return err
	}
	vertex, err := b.upload("Bounding Box Vertices", marshalPositions(positions), wgpu.BufferUsageVertex)
	if err != nil {
		return err
	}
	b.transientBuffers = append(b.transientBuffers, vertex)
	index, err := b.upload("Bounding Box Indices", marshalIndices(indices), wgpu.BufferUsageIndex)
	if err != nil {
		return err
	}
	b.transientBuffers = append(b.transientBuffers, index)
	instances, err := b.upload("Bounding Box Instance", marshalMatrices([]mgl32.Mat4{mgl32.Ident4()}), wgpu.BufferUsageVertex)
	if err != nil {
		return err
	}
	b.transientBuffers = append(b.transientBuffers, instances)
	group, err := b.uniformBindGroup(GPUDrawUniform{ViewProj: viewProjection, Color: boundingBoxColor})
	if err != nil {
		return err
	}

	b.beginPass()
	b.framePass.SetPipeline(p)
	b.framePass.SetBindGroup(0, group, nil)
	b.framePass.SetVertexBuffer(0, vertex, 0, wgpu.WholeSize)
	b.framePass.SetVertexBuffer(1, instances, 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(len(indices)), 1, 0, 0, 0)
	return nil
}

func (b *wgpuBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return nil
	}
	b.bound = nil
	b.flush()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseTransients()
		return fmt.Errorf("renderer: finish frame: %w", err)
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	b.releaseTransients()
	b.releaseDisposedTargets()
	return nil
}

func (b *wgpuBackendImpl) releaseTransients() {
	for _, g := range b.transientGroups {
		g.Release()
	}
	for _, buf := range b.transientBuffers {
		buf.Release()
	}
	b.transientGroups = b.transientGroups[:0]
	b.transientBuffers = b.transientBuffers[:0]
}

func (b *wgpuBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If no frame surface is held, nothing to present.
	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuBackendImpl) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	// A failed reconfigure is reported by the next BeginFrame.
	b.resizeErr = b.configureSurface(width, height)
}

func (b *wgpuBackendImpl) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}
