package graphics

import (
	"fmt"
	"image"
	"log"

	"blockworld/internal/meshing"
	"blockworld/internal/profiling"
	"blockworld/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

type gpuMesh struct {
	vao, vbo, ebo uint32
	indices       int32
}

// ChunkRenderer owns the GL buffers of every chunk mesh and draws them.
// It implements meshing.Uploader and must only be used on the GL thread.
type ChunkRenderer struct {
	shader  *Shader
	atlas   uint32
	meshes  map[uint32]*gpuMesh
	dynamic gpuMesh // streamed every frame for blocks drawn outside chunk meshes
	prof    *profiling.Profiler

	// MaxMeshes bounds the number of live chunk meshes; 0 means unbounded
	MaxMeshes int
}

var _ meshing.Uploader = (*ChunkRenderer)(nil)

// NewChunkRenderer configures GL state and compiles the chunk program.
// atlasImg may be nil for the placeholder atlas.
func NewChunkRenderer(atlasImg *image.RGBA, prof *profiling.Profiler) (*ChunkRenderer, error) {
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	shader, err := LoadShader("chunk")
	if err != nil {
		return nil, err
	}
	if atlasImg == nil {
		atlasImg = PlaceholderAtlas()
	}
	r := &ChunkRenderer{
		shader: shader,
		atlas:  UploadTexture(atlasImg),
		meshes: make(map[uint32]*gpuMesh),
		prof:   prof,
	}
	if err := r.initBuffers(&r.dynamic); err != nil {
		r.Dispose()
		return nil, err
	}
	return r, nil
}

// initBuffers allocates a VAO with its vertex and index buffers and sets the
// interleaved position/color/uv layout
func (r *ChunkRenderer) initBuffers(m *gpuMesh) error {
	gl.GenVertexArrays(1, &m.vao)
	if m.vao == 0 {
		return meshing.ErrNoBuffer
	}
	gl.GenBuffers(1, &m.vbo)
	gl.GenBuffers(1, &m.ebo)
	if m.vbo == 0 || m.ebo == 0 {
		r.free(m)
		return meshing.ErrNoBuffer
	}

	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	stride := int32(meshing.VertexStride * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(2)
	gl.BindVertexArray(0)
	return nil
}

func (r *ChunkRenderer) fill(m *gpuMesh, verts []float32, usage uint32) {
	idx := meshing.QuadIndices(len(verts) / meshing.VertexStride)
	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), usage)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	if len(idx) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(idx)*4, gl.Ptr(idx), usage)
	}
	gl.BindVertexArray(0)
	m.indices = int32(len(idx))
}

func (r *ChunkRenderer) free(m *gpuMesh) {
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	*m = gpuMesh{}
}

// Upload stores verts in new GL buffers. Empty meshes need no buffers and
// return the zero handle.
func (r *ChunkRenderer) Upload(verts []float32) (world.Mesh, error) {
	defer r.prof.Track("graphics.Upload")()
	if len(verts) == 0 {
		return world.Mesh{}, nil
	}
	if r.MaxMeshes > 0 && len(r.meshes) >= r.MaxMeshes {
		return world.Mesh{}, meshing.ErrNoBuffer
	}
	m := &gpuMesh{}
	if err := r.initBuffers(m); err != nil {
		return world.Mesh{}, err
	}
	r.fill(m, verts, gl.STATIC_DRAW)
	if err := glError("upload"); err != nil {
		r.free(m)
		return world.Mesh{}, err
	}
	r.meshes[m.vao] = m
	return world.Mesh{Handle: m.vao, Vertices: len(verts) / meshing.VertexStride}, nil
}

// Release frees the buffers behind a handle returned by Upload
func (r *ChunkRenderer) Release(mesh world.Mesh) {
	m, ok := r.meshes[mesh.Handle]
	if !ok {
		return
	}
	delete(r.meshes, mesh.Handle)
	r.free(m)
}

// Live returns the number of uploaded chunk meshes
func (r *ChunkRenderer) Live() int { return len(r.meshes) }

// Frame describes one draw of the world
type Frame struct {
	Camera *Camera
	Sun    float32
	// Dynamic holds per-frame geometry such as falling blocks
	Dynamic []float32
}

// SkyColor returns the clear color for a sun intensity
func SkyColor(sun float32) mgl32.Vec3 {
	day := mgl32.Vec3{0.53, 0.81, 0.92}
	night := mgl32.Vec3{0.02, 0.02, 0.06}
	return night.Add(day.Sub(night).Mul(sun))
}

// Draw clears the screen and draws every active chunk in the view volume.
// It returns the number of chunks drawn.
func (r *ChunkRenderer) Draw(m *world.Manager, f Frame) int {
	defer r.prof.Track("graphics.Draw")()
	sky := SkyColor(f.Sun)
	gl.ClearColor(sky.X(), sky.Y(), sky.Z(), 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	view := f.Camera.ViewMatrix()
	proj := f.Camera.ProjectionMatrix()
	frustum := NewFrustum(proj.Mul4(view))

	r.shader.Use()
	r.shader.SetMatrix4("proj", &proj[0])
	r.shader.SetMatrix4("view", &view[0])
	r.shader.SetInt("atlas", 0)
	r.shader.SetVector3("fogColor", sky.X(), sky.Y(), sky.Z())
	far := f.Camera.FarPlane
	r.shader.SetFloat("fogNear", far*0.6)
	r.shader.SetFloat("fogFar", far)
	r.shader.SetFloat("ambient", 0.05)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.atlas)

	drawn := 0
	m.ForEachActive(func(c *world.Chunk) {
		mesh, ok := r.meshes[c.Mesh().Handle]
		if !ok || !frustum.ContainsChunk(c.Coord) {
			return
		}
		gl.BindVertexArray(mesh.vao)
		gl.DrawElementsWithOffset(gl.TRIANGLES, mesh.indices, gl.UNSIGNED_INT, 0)
		drawn++
	})

	if len(f.Dynamic) > 0 {
		r.fill(&r.dynamic, f.Dynamic, gl.STREAM_DRAW)
		gl.BindVertexArray(r.dynamic.vao)
		gl.DrawElementsWithOffset(gl.TRIANGLES, r.dynamic.indices, gl.UNSIGNED_INT, 0)
	}
	gl.BindVertexArray(0)
	if err := glError("draw"); err != nil {
		log.Printf("graphics: %v", err)
	}
	return drawn
}

// Dispose frees every GL object owned by the renderer
func (r *ChunkRenderer) Dispose() {
	for h, m := range r.meshes {
		r.free(m)
		delete(r.meshes, h)
	}
	r.free(&r.dynamic)
	if r.atlas != 0 {
		gl.DeleteTextures(1, &r.atlas)
		r.atlas = 0
	}
	if r.shader != nil {
		r.shader.Delete()
	}
}

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		if code == gl.OUT_OF_MEMORY {
			return fmt.Errorf("%s: %w", op, meshing.ErrNoBuffer)
		}
		return fmt.Errorf("%s: gl error 0x%x", op, code)
	}
	return nil
}
