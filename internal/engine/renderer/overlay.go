package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/floorview/internal/ui/sheet"
	"github.com/Faultbox/floorview/pkg/math"
)

var (
	sheetColor  = [4]float32{1, 1, 1, 0.96}
	handleColor = [4]float32{0.82, 0.84, 0.86, 1}
	accentColor = [4]float32{0.42, 0.45, 0.5, 1}
	errorColor  = [4]float32{0.94, 0.27, 0.27, 0.9}
)

func (r *Renderer) createQuad() {
	vertices := []float32{
		0, 0,
		1, 0,
		1, 1,
		0, 0,
		1, 1,
		0, 1,
	}
	gl.GenVertexArrays(1, &r.quadVAO)
	gl.BindVertexArray(r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// DrawSheet draws the bottom sheet panel at the given height in window
// coordinates. loading dims the content bar; message draws an error strip.
func (r *Renderer) DrawSheet(height, viewportW, viewportH float32, loading, message bool) {
	if height <= 0 {
		return
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	r.overlay.Use()
	r.overlay.SetMat4("uProj", math.Ortho(0, viewportW, viewportH, 0, -1, 1))
	gl.BindVertexArray(r.quadVAO)

	panel := sheet.PanelRect(height, viewportW, viewportH)
	r.fill(panel, sheetColor)
	r.fill(sheet.GripRect(panel), handleColor)

	content := accentColor
	if loading {
		content[3] = 0.3
	}
	r.fill(sheet.Rect{X: 24, Y: panel.Y + 40, W: viewportW * 0.5, H: 14}, content)
	if message {
		r.fill(sheet.Rect{X: 24, Y: panel.Y + 64, W: viewportW - 48, H: 24}, errorColor)
	}

	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

func (r *Renderer) fill(rect sheet.Rect, color [4]float32) {
	r.overlay.SetVec4("uRect", [4]float32{rect.X, rect.Y, rect.W, rect.H})
	r.overlay.SetVec4("uColor", color)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
}
