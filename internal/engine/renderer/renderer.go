// Package renderer draws the scene meshes and the info sheet with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/floorview/internal/engine/lighting"
	"github.com/Faultbox/floorview/internal/engine/scenegraph"
	"github.com/Faultbox/floorview/internal/engine/shader"
	"github.com/Faultbox/floorview/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Background scenegraph.Color
}

// meshBuffer is the GPU copy of one Geometry.
type meshBuffer struct {
	vao, vbo, ebo uint32
	count         int32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config
	log    *zap.Logger

	mesh    *shader.Program
	overlay *shader.Program

	buffers map[*scenegraph.Geometry]*meshBuffer

	quadVAO uint32
	quadVBO uint32

	sun lighting.Sun
}

// New creates a new renderer.
// Must be called after the OpenGL context is created.
func New(cfg Config, log *zap.Logger) (*Renderer, error) {
	r := &Renderer{
		config:  cfg,
		log:     log,
		buffers: make(map[*scenegraph.Geometry]*meshBuffer),
		sun:     lighting.DefaultSun(),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.MULTISAMPLE)
	bg := cfg.Background
	gl.ClearColor(bg[0], bg[1], bg[2], 1.0)

	var err error
	if r.mesh, err = shader.NewProgram(shader.MeshVertex, shader.MeshFragment); err != nil {
		return nil, fmt.Errorf("mesh program: %w", err)
	}
	if r.overlay, err = shader.NewProgram(shader.OverlayVertex, shader.OverlayFragment); err != nil {
		r.mesh.Delete()
		return nil, fmt.Errorf("overlay program: %w", err)
	}
	r.createQuad()

	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	for g := range r.buffers {
		r.release(g)
	}
	if r.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &r.quadVAO)
	}
	if r.quadVBO != 0 {
		gl.DeleteBuffers(1, &r.quadVBO)
	}
	r.mesh.Delete()
	r.overlay.Delete()
}

// ReadPixels returns the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	pixels = make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, width, height
}

// Resize handles a framebuffer size change.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// DrawScene draws every mesh under root with its current material state.
// Opacity only applies to materials marked transparent; those are blended
// after the opaque pass without depth writes.
func (r *Renderer) DrawScene(root *scenegraph.Node, viewProj math.Mat4) {
	if root == nil {
		return
	}

	var transparent []*scenegraph.Node
	r.mesh.Use()
	r.mesh.SetMat4("uViewProj", viewProj)
	r.mesh.SetVec3("uLightDir", r.sun.Direction.Array())
	r.mesh.SetFloat("uAmbient", r.sun.Ambient)

	gl.Disable(gl.BLEND)
	gl.DepthMask(true)
	root.TraverseMeshes(func(n *scenegraph.Node) {
		if isTransparent(n) {
			transparent = append(transparent, n)
			return
		}
		r.drawMesh(n)
	})

	if len(transparent) == 0 {
		return
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)
	for _, n := range transparent {
		r.drawMesh(n)
	}
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
}

func isTransparent(n *scenegraph.Node) bool {
	for _, m := range n.Materials {
		if m.Transparent && m.Opacity < 1 {
			return true
		}
	}
	return false
}

func (r *Renderer) drawMesh(n *scenegraph.Node) {
	buf := r.upload(n.Geometry)
	if buf == nil {
		return
	}
	r.mesh.SetMat4("uModel", n.WorldMatrix())

	// One draw per material; later materials overwrite earlier ones.
	for _, m := range n.Materials {
		opacity := float32(1)
		if m.Transparent {
			opacity = m.Opacity
		}
		r.mesh.SetVec3("uColor", m.Color)
		r.mesh.SetVec3("uEmissive", m.Emissive)
		r.mesh.SetFloat("uEmissiveIntensity", m.EmissiveIntensity)
		r.mesh.SetFloat("uOpacity", opacity)

		gl.BindVertexArray(buf.vao)
		gl.DrawElements(gl.TRIANGLES, buf.count, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
}

// upload returns the GPU buffers for g, creating them on first use.
func (r *Renderer) upload(g *scenegraph.Geometry) *meshBuffer {
	if buf, ok := r.buffers[g]; ok {
		return buf
	}
	if len(g.Positions) == 0 {
		return nil
	}

	vertices := make([]float32, 0, len(g.Positions)*3)
	for _, p := range g.Positions {
		vertices = append(vertices, p.X, p.Y, p.Z)
	}
	indices := g.Indices
	if len(indices) == 0 {
		indices = make([]uint32, len(g.Positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	buf := &meshBuffer{count: int32(len(indices))}
	gl.GenVertexArrays(1, &buf.vao)
	gl.BindVertexArray(buf.vao)

	gl.GenBuffers(1, &buf.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &buf.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.buffers[g] = buf
	return buf
}

// Prune frees buffers of geometry no longer reachable from root, for
// example after switching floors.
func (r *Renderer) Prune(root *scenegraph.Node) {
	live := make(map[*scenegraph.Geometry]bool)
	if root != nil {
		root.TraverseMeshes(func(n *scenegraph.Node) { live[n.Geometry] = true })
	}
	freed := 0
	for g := range r.buffers {
		if !live[g] {
			r.release(g)
			freed++
		}
	}
	if freed > 0 {
		r.log.Debug("released mesh buffers", zap.Int("count", freed))
	}
}

func (r *Renderer) release(g *scenegraph.Geometry) {
	buf := r.buffers[g]
	gl.DeleteVertexArrays(1, &buf.vao)
	gl.DeleteBuffers(1, &buf.vbo)
	gl.DeleteBuffers(1, &buf.ebo)
	delete(r.buffers, g)
}
