//go:build !test
// +build !test

package sim

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

const vertexShaderSource = `
#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aColor;

uniform mat4 model;
uniform mat4 view;
uniform mat4 projection;

out vec3 vertexColor;
out vec3 worldPos;
out float shade;

void main() {
    vec4 wp = model * vec4(aPos, 1.0);
    worldPos = wp.xyz;
    gl_Position = projection * view * wp;
    vertexColor = aColor;
    // cheap top lighting: upper vertices are brighter
    shade = 0.75 + 0.25 * (aPos.y + 0.5);
}
` + "\x00"

const fragmentShaderSource = `
#version 410 core
in vec3 vertexColor;
in vec3 worldPos;
in float shade;
out vec4 FragColor;

uniform float uTileSize;
uniform vec3 uColorA;
uniform vec3 uColorB;
uniform int uUseChecker; // 1 = ground checker, 0 = mesh color
uniform int uUseTint;    // 1 = uTint replaces the vertex color
uniform vec3 uTint;
uniform vec3 uCameraPos;
uniform vec3 uFogColor;
uniform float uFogDensity;
uniform float uGridLineWidth;
uniform vec3 uGridLineColor;
uniform float uGridLineAlpha;

vec3 fog(vec3 c) {
    float dist = distance(worldPos, uCameraPos);
    float f = 1.0 - exp(-uFogDensity * dist);
    return mix(c, uFogColor, clamp(f, 0.0, 1.0));
}

void main() {
    if (uUseChecker == 1) {
        float tx = floor(worldPos.x / uTileSize);
        float tz = floor(worldPos.z / uTileSize);
        float checker = mod(tx + tz, 2.0);
        vec3 baseColor = mix(uColorA, uColorB, checker);

        float fx = abs(fract(worldPos.x / uTileSize) - 0.5);
        float fz = abs(fract(worldPos.z / uTileSize) - 0.5);
        float lineWidth = uGridLineWidth / uTileSize;
        float lineMask = 1.0 - smoothstep(0.0, lineWidth, min(fx, fz));
        vec3 gridColor = mix(baseColor, uGridLineColor, lineMask * uGridLineAlpha);
        FragColor = vec4(fog(gridColor), 1.0);
        return;
    }
    vec3 c = uUseTint == 1 ? uTint : vertexColor;
    FragColor = vec4(fog(c * shade), 1.0);
}
` + "\x00"

// Renderer draws the ground, the city boxes and the airplane.
type Renderer struct {
	shaderProgram uint32
	cubeVAO       uint32
	groundVAO     uint32
	modelLoc      int32
	viewLoc       int32
	projectionLoc int32
	tileSizeLoc   int32
	colorALoc     int32
	colorBLoc     int32
	useCheckerLoc int32
	useTintLoc    int32
	tintLoc       int32
	cameraPosLoc  int32
	fogColorLoc   int32
	fogDensityLoc int32
	gridWidthLoc  int32
	gridColorLoc  int32
	gridAlphaLoc  int32

	cameraPos Vec3
}

func NewRenderer() *Renderer {
	r := &Renderer{}
	r.initShaders()
	r.initGeometry()
	return r
}

func (r *Renderer) initShaders() {
	vertexShader := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	fragmentShader := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	r.shaderProgram = linkProgram(vertexShader, fragmentShader)

	loc := func(name string) int32 {
		return gl.GetUniformLocation(r.shaderProgram, gl.Str(name+"\x00"))
	}
	r.modelLoc = loc("model")
	r.viewLoc = loc("view")
	r.projectionLoc = loc("projection")
	r.tileSizeLoc = loc("uTileSize")
	r.colorALoc = loc("uColorA")
	r.colorBLoc = loc("uColorB")
	r.useCheckerLoc = loc("uUseChecker")
	r.useTintLoc = loc("uUseTint")
	r.tintLoc = loc("uTint")
	r.cameraPosLoc = loc("uCameraPos")
	r.fogColorLoc = loc("uFogColor")
	r.fogDensityLoc = loc("uFogDensity")
	r.gridWidthLoc = loc("uGridLineWidth")
	r.gridColorLoc = loc("uGridLineColor")
	r.gridAlphaLoc = loc("uGridLineAlpha")
}

func (r *Renderer) initGeometry() {
	// Unit cube centered on the origin. The nose (+X) face is lighter so the
	// airplane's heading reads at a glance.
	cubeVertices := []float32{
		// -X half
		-0.5, -0.5, -0.5, 0.75, 0.75, 0.8,
		-0.5, -0.5, 0.5, 0.75, 0.75, 0.8,
		-0.5, 0.5, 0.5, 0.85, 0.85, 0.9,
		-0.5, 0.5, -0.5, 0.85, 0.85, 0.9,
		// +X half (nose)
		0.5, -0.5, -0.5, 1.0, 0.45, 0.2,
		0.5, -0.5, 0.5, 1.0, 0.45, 0.2,
		0.5, 0.5, 0.5, 1.0, 0.55, 0.25,
		0.5, 0.5, -0.5, 1.0, 0.55, 0.25,
	}

	cubeIndices := []uint32{
		0, 1, 2, 2, 3, 0, // -X
		4, 5, 6, 6, 7, 4, // +X
		0, 1, 5, 5, 4, 0, // bottom
		3, 2, 6, 6, 7, 3, // top
		0, 3, 7, 7, 4, 0, // -Z
		1, 2, 6, 6, 5, 1, // +Z
	}
	r.cubeVAO = uploadMesh(cubeVertices, cubeIndices)

	groundVertices := []float32{
		-400.0, 0.0, -400.0, 0.3, 0.7, 0.3,
		400.0, 0.0, -400.0, 0.3, 0.7, 0.3,
		400.0, 0.0, 400.0, 0.3, 0.7, 0.3,
		-400.0, 0.0, 400.0, 0.3, 0.7, 0.3,
	}
	groundIndices := []uint32{0, 1, 2, 2, 3, 0}
	r.groundVAO = uploadMesh(groundVertices, groundIndices)
}

// uploadMesh creates a VAO for interleaved position/color vertices.
func uploadMesh(vertices []float32, indices []uint32) uint32 {
	var vao, vbo, ebo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.GenBuffers(1, &ebo)

	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 6*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 6*4, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)
	return vao
}

// SetMatrices uploads the transforms. GL wants float32, the math is float64.
func (r *Renderer) SetMatrices(model, view, projection Mat4) {
	m, v, p := model.Float32(), view.Float32(), projection.Float32()
	gl.UseProgram(r.shaderProgram)
	gl.UniformMatrix4fv(r.modelLoc, 1, false, &m[0])
	gl.UniformMatrix4fv(r.viewLoc, 1, false, &v[0])
	gl.UniformMatrix4fv(r.projectionLoc, 1, false, &p[0])
}

func (r *Renderer) setFog() {
	gl.Uniform3f(r.cameraPosLoc, float32(r.cameraPos.X), float32(r.cameraPos.Y), float32(r.cameraPos.Z))
	gl.Uniform3f(r.fogColorLoc, 0.53, 0.81, 0.92)
	gl.Uniform1f(r.fogDensityLoc, 0.004)
}

// RenderAirplane draws the cube with its own vertex colors.
func (r *Renderer) RenderAirplane() {
	gl.UseProgram(r.shaderProgram)
	gl.BindVertexArray(r.cubeVAO)
	gl.Uniform1i(r.useCheckerLoc, 0)
	gl.Uniform1i(r.useTintLoc, 0)
	r.setFog()
	gl.DrawElements(gl.TRIANGLES, 36, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

// RenderBox draws the cube in a flat 0xRRGGBB color.
func (r *Renderer) RenderBox(color uint32) {
	cr, cg, cb := unpackRGB(color)
	gl.UseProgram(r.shaderProgram)
	gl.BindVertexArray(r.cubeVAO)
	gl.Uniform1i(r.useCheckerLoc, 0)
	gl.Uniform1i(r.useTintLoc, 1)
	gl.Uniform3f(r.tintLoc, cr, cg, cb)
	r.setFog()
	gl.DrawElements(gl.TRIANGLES, 36, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

func (r *Renderer) RenderGround() {
	gl.UseProgram(r.shaderProgram)
	gl.BindVertexArray(r.groundVAO)
	gl.Uniform1i(r.useCheckerLoc, 1)
	gl.Uniform1f(r.tileSizeLoc, 10.0)
	gl.Uniform3f(r.colorALoc, 0.28, 0.30, 0.28)
	gl.Uniform3f(r.colorBLoc, 0.24, 0.26, 0.24)
	r.setFog()
	gl.Uniform1f(r.gridWidthLoc, 0.2)
	gl.Uniform3f(r.gridColorLoc, 0.8, 0.8, 0.6)
	gl.Uniform1f(r.gridAlphaLoc, 0.4)
	gl.DrawElements(gl.TRIANGLES, 6, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

func (r *Renderer) SetCamera(pos Vec3) {
	r.cameraPos = pos
}

// BoxModel maps the unit cube onto an AABB.
func BoxModel(b AABB) Mat4 {
	size := b.Size()
	return TranslationMat4(b.Center()).Mul(ScaleMat4(size.X, size.Y, size.Z))
}

func unpackRGB(c uint32) (float32, float32, float32) {
	return float32((c>>16)&0xff) / 255, float32((c>>8)&0xff) / 255, float32(c&0xff) / 255
}

func linkProgram(shaders ...uint32) uint32 {
	program := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(program, s)
	}
	gl.LinkProgram(program)

	var success int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &success)
	if success == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		panic(fmt.Errorf("failed to link shader program: %v", log))
	}
	for _, s := range shaders {
		gl.DeleteShader(s)
	}
	return program
}

func compileShader(source string, shaderType uint32) uint32 {
	shader := gl.CreateShader(shaderType)
	cSources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, cSources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		panic(fmt.Errorf("failed to compile %v: %v", source, log))
	}

	return shader
}
