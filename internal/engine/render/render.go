// Package render draws the posing scene: model meshes, highlight tints,
// and controller rays.
package render

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/banyapon/vrmecanism/internal/engine/scene"
	"github.com/banyapon/vrmecanism/internal/engine/shader"
	"github.com/banyapon/vrmecanism/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Tint colors applied to mesh nodes by interaction state.
var (
	TintNone   = mgl32.Vec4{1, 1, 1, 1}
	TintHover  = mgl32.Vec4{1.0, 0.9, 0.4, 1}
	TintRotate = mgl32.Vec4{1.0, 0.55, 0.2, 1}
	TintMove   = mgl32.Vec4{0.4, 0.7, 1.0, 1}
)

// meshBuffers holds the GL objects for one mesh node.
type meshBuffers struct {
	vao        uint32
	vbo        uint32
	indexCount int32
}

// Renderer handles all OpenGL rendering for the preview viewport.
type Renderer struct {
	config Config

	meshProgram *shader.Program
	lineProgram *shader.Program

	meshes map[scene.NodeID]*meshBuffers

	lineVAO uint32
	lineVBO uint32
}

// New creates a new renderer.
// Must be called after the OpenGL context exists.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		meshes: make(map[scene.NodeID]*meshBuffers),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.08, 0.09, 0.12, 1.0)

	var err error
	r.meshProgram, err = shader.NewProgram(meshVertexSrc, meshFragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to create mesh program: %w", err)
	}
	r.lineProgram, err = shader.NewProgram(lineVertexSrc, lineFragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to create line program: %w", err)
	}

	if err := r.createLineBuffer(); err != nil {
		return nil, fmt.Errorf("failed to create line buffer: %w", err)
	}

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	r.ReleaseGraph()
	if r.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &r.lineVAO)
	}
	if r.lineVBO != 0 {
		gl.DeleteBuffers(1, &r.lineVBO)
	}
	if r.meshProgram != nil {
		r.meshProgram.Delete()
	}
	if r.lineProgram != nil {
		r.lineProgram.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
}

// UploadGraph creates GL buffers for every mesh node in the graph.
// Any previously uploaded graph is released first.
func (r *Renderer) UploadGraph(g *scene.Graph) error {
	r.ReleaseGraph()

	for _, id := range g.MeshNodes() {
		node := g.Node(id)
		buf, err := uploadMesh(node.Mesh)
		if err != nil {
			r.ReleaseGraph()
			return fmt.Errorf("uploading mesh %q: %w", node.Name, err)
		}
		r.meshes[id] = buf
	}

	logger.Debug("graph uploaded", zap.Int("meshes", len(r.meshes)))
	return nil
}

// ReleaseGraph frees all mesh buffers.
func (r *Renderer) ReleaseGraph() {
	for _, buf := range r.meshes {
		gl.DeleteVertexArrays(1, &buf.vao)
		gl.DeleteBuffers(1, &buf.vbo)
	}
	r.meshes = make(map[scene.NodeID]*meshBuffers)
}

// DrawGraph renders every uploaded mesh node at its current world transform.
// Nodes present in tints are drawn with that tint color.
func (r *Renderer) DrawGraph(g *scene.Graph, view, proj mgl32.Mat4, tints map[scene.NodeID]mgl32.Vec4) {
	r.meshProgram.Use()
	r.meshProgram.SetMat4("uView", view)
	r.meshProgram.SetMat4("uProj", proj)

	// Headlamp: light direction follows the camera.
	lightDir := mgl32.Vec3{view[2], view[6], view[10]}.Normalize()
	r.meshProgram.SetVec3("uLightDir", lightDir)

	for id, buf := range r.meshes {
		node := g.Node(id)
		if node == nil {
			continue
		}

		model := node.WorldMatrix()
		r.meshProgram.SetMat4("uModel", model)
		r.meshProgram.SetMat4("uNormal", model.Inv().Transpose())

		tint := TintNone
		if t, ok := tints[id]; ok {
			tint = t
		}
		r.meshProgram.SetVec4("uTint", tint)

		gl.BindVertexArray(buf.vao)
		gl.DrawArrays(gl.TRIANGLES, 0, buf.indexCount)
	}
	gl.BindVertexArray(0)
}

// DrawRay renders a controller ray from origin along dir for the given length.
func (r *Renderer) DrawRay(origin, dir mgl32.Vec3, length float32, view, proj mgl32.Mat4, color mgl32.Vec4) {
	end := origin.Add(dir.Mul(length))
	verts := []float32{
		origin.X(), origin.Y(), origin.Z(),
		end.X(), end.Y(), end.Z(),
	}

	r.lineProgram.Use()
	r.lineProgram.SetMat4("uView", view)
	r.lineProgram.SetMat4("uProj", proj)
	r.lineProgram.SetVec4("uColor", color)

	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(verts)*4, unsafe.Pointer(&verts[0]))
	gl.DrawArrays(gl.LINES, 0, 2)
	gl.BindVertexArray(0)
}

// uploadMesh expands indexed triangles into a flat position+normal buffer.
// Normals are accumulated per vertex so shared edges shade smoothly.
func uploadMesh(mesh *scene.Mesh) (*meshBuffers, error) {
	if mesh == nil || len(mesh.Indices) == 0 {
		return nil, fmt.Errorf("empty mesh")
	}

	normals := make([]mgl32.Vec3, len(mesh.Positions))
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		i0, i1, i2 := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
		a, b, c := mesh.Positions[i0], mesh.Positions[i1], mesh.Positions[i2]
		n := b.Sub(a).Cross(c.Sub(a))
		normals[i0] = normals[i0].Add(n)
		normals[i1] = normals[i1].Add(n)
		normals[i2] = normals[i2].Add(n)
	}
	for i := range normals {
		if normals[i].Len() > 0 {
			normals[i] = normals[i].Normalize()
		}
	}

	// Interleaved position + normal, de-indexed.
	verts := make([]float32, 0, len(mesh.Indices)*6)
	for _, idx := range mesh.Indices {
		p, n := mesh.Positions[idx], normals[idx]
		verts = append(verts, p.X(), p.Y(), p.Z(), n.X(), n.Y(), n.Z())
	}

	buf := &meshBuffers{indexCount: int32(len(mesh.Indices))}

	gl.GenVertexArrays(1, &buf.vao)
	gl.BindVertexArray(buf.vao)

	gl.GenBuffers(1, &buf.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, unsafe.Pointer(&verts[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 6*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 6*4, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return buf, nil
}

// createLineBuffer allocates a dynamic two-vertex buffer for ray drawing.
func (r *Renderer) createLineBuffer() error {
	gl.GenVertexArrays(1, &r.lineVAO)
	gl.BindVertexArray(r.lineVAO)

	gl.GenBuffers(1, &r.lineVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 6*4, nil, gl.DYNAMIC_DRAW)

	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return nil
}

const meshVertexSrc = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProj;
uniform mat4 uNormal;

out vec3 vNormal;

void main() {
	gl_Position = uProj * uView * uModel * vec4(aPos, 1.0);
	vNormal = mat3(uNormal) * aNormal;
}
`

const meshFragmentSrc = `
#version 410 core

in vec3 vNormal;

uniform vec3 uLightDir;
uniform vec4 uTint;

out vec4 FragColor;

void main() {
	float diffuse = max(dot(normalize(vNormal), uLightDir), 0.0);
	vec3 base = vec3(0.62, 0.64, 0.7);
	vec3 lit = base * (0.25 + 0.75 * diffuse);
	FragColor = vec4(lit, 1.0) * uTint;
}
`

const lineVertexSrc = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uView;
uniform mat4 uProj;

void main() {
	gl_Position = uProj * uView * vec4(aPos, 1.0);
}
`

const lineFragmentSrc = `
#version 410 core

uniform vec4 uColor;

out vec4 FragColor;

void main() {
	FragColor = uColor;
}
`
