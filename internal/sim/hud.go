//go:build !test
// +build !test

package sim

import (
	"strconv"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

type Color struct{ R, G, B, A float32 }

var (
	hudText   = Color{0.9, 0.95, 1, 1}
	hudWarn   = Color{1.0, 0.8, 0.3, 1}
	hudAlert  = Color{1.0, 0.35, 0.35, 1}
	hudOK     = Color{0.8, 1.0, 0.8, 1}
	hudPanel  = Color{0, 0, 0, 0.45}
	hudBarBg  = Color{1, 1, 1, 0.15}
	hudBarFg  = Color{0.2, 0.9, 0.4, 0.9}
	hudHeader = Color{1, 1, 1, 1}
)

// HUD batches flat 2D rectangles in pixel space and draws them in one call.
// Text is built from the same rectangles with a 5x7 bitmap font.
type HUD struct {
	shader uint32
	vao    uint32
	vbo    uint32
	verts  []float32 // x,y,r,g,b,a per vertex
	scrW   int
	scrH   int
}

func NewHUD() *HUD {
	h := &HUD{}
	h.init()
	return h
}

func (h *HUD) init() {
	vs := `#version 410 core
layout(location=0) in vec2 aPos;
layout(location=1) in vec4 aColor;
out vec4 vColor;
void main(){
    gl_Position = vec4(aPos, 0.0, 1.0);
    vColor = aColor;
}` + "\x00"
	fs := `#version 410 core
in vec4 vColor;
out vec4 FragColor;
void main(){
    FragColor = vColor;
}` + "\x00"

	h.shader = linkProgram(
		compileShader(vs, gl.VERTEX_SHADER),
		compileShader(fs, gl.FRAGMENT_SHADER),
	)

	gl.GenVertexArrays(1, &h.vao)
	gl.GenBuffers(1, &h.vbo)
	gl.BindVertexArray(h.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, h.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 6*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, 6*4, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)
}

func (h *HUD) Begin(width, height int) {
	h.scrW, h.scrH = width, height
	h.verts = h.verts[:0]
}

func (h *HUD) Flush() {
	if len(h.verts) == 0 {
		return
	}
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.UseProgram(h.shader)
	gl.BindVertexArray(h.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, h.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(h.verts)*4, gl.Ptr(h.verts), gl.DYNAMIC_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(h.verts)/6))
	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

// AddRect queues a rectangle with a top-left pixel origin.
func (h *HUD) AddRect(x, y, w, ht int, c Color) {
	x0 := h.pxToNDCX(float32(x))
	y0 := h.pxToNDCY(float32(y))
	x1 := h.pxToNDCX(float32(x + w))
	y1 := h.pxToNDCY(float32(y + ht))

	h.addV(x0, y0, c)
	h.addV(x1, y0, c)
	h.addV(x1, y1, c)

	h.addV(x0, y0, c)
	h.addV(x1, y1, c)
	h.addV(x0, y1, c)
}

func (h *HUD) addV(x, y float32, c Color) {
	h.verts = append(h.verts, x, y, c.R, c.G, c.B, c.A)
}

func (h *HUD) pxToNDCX(px float32) float32 { return (px/float32(h.scrW))*2 - 1 }
func (h *HUD) pxToNDCY(py float32) float32 { return 1 - (py/float32(h.scrH))*2 }

// DrawText draws uppercase text; scale is the size of one font pixel.
func (h *HUD) DrawText(x, y int, text string, scale int, c Color) {
	cx := x
	cw := 5 * scale
	ch := 7 * scale
	for _, r := range strings.ToUpper(text) {
		if r == '\n' {
			y += ch + scale
			cx = x
			continue
		}
		glyph, ok := font5x7[r]
		if !ok {
			cx += cw + scale
			continue
		}
		for row := 0; row < 7; row++ {
			bits := glyph[row]
			for col := 0; col < 5; col++ {
				if bits&(1<<uint(4-col)) != 0 {
					h.AddRect(cx+col*scale, y+row*scale, scale, scale, c)
				}
			}
		}
		cx += cw + scale
	}
}

// AddBar draws a horizontal gauge filled to frac.
func (h *HUD) AddBar(x, y, w, ht int, frac float64, c Color) {
	h.AddRect(x, y, w, ht, hudBarBg)
	fill := int(Clamp(frac, 0, 1)*float64(w) + 0.5)
	if fill > 0 {
		h.AddRect(x, y, fill, ht, c)
	}
}

// hudFrame is everything the panel shows, gathered under one read lock.
type hudFrame struct {
	snap     FlightSnapshot
	controls ControlStatus
	camera   CameraInfo
	mode     string
	debug    DebugInfo
	started  bool
	fps      float64
}

func (h *HUD) DrawFlightPanel(f hudFrame) {
	const (
		panelWidth = 330
		scale      = 2
		line       = 8 * scale
	)
	x, y := 12, 16

	h.AddRect(0, 0, panelWidth, h.scrH, hudPanel)
	h.DrawText(x, y, "CITY FLIGHT", 4, hudHeader)
	y += line * 2

	if !f.started {
		h.DrawText(x, y, "PRESS ENTER TO FLY", scale, hudWarn)
		y += line
		h.DrawText(x, y, "CAM "+f.mode, scale, hudText)
		return
	}

	status, statusColor := "GROUND", hudText
	switch {
	case f.debug.Active:
		status, statusColor = "DEBUG", hudWarn
	case f.snap.IsFlying:
		status, statusColor = "FLYING", hudOK
	case !f.snap.IsOnGround:
		status, statusColor = "STALL", hudAlert
	}
	h.DrawText(x, y, "STAT "+status, scale, statusColor)
	y += line
	h.DrawText(x, y, "FPS "+itoa(int(f.fps+0.5)), scale, hudOK)
	y += line * 2

	h.DrawText(x, y, "SPD "+itoa(int(f.snap.Speed+0.5))+" M/S", scale, hudText)
	y += line
	h.DrawText(x, y, "ALT "+itoa(int(f.snap.Altitude+0.5))+" M", scale, hudText)
	y += line
	h.DrawText(x, y, "HDG "+itoa(int(RadToDeg(f.snap.Heading)+0.5)), scale, hudText)
	y += line
	h.DrawText(x, y, "THR "+itoa(int(f.snap.Throttle*100+0.5))+"%", scale, hudText)
	y += line
	h.AddBar(x, y, panelWidth-2*x, 8, f.snap.Throttle, hudBarFg)
	y += line

	y += line
	h.DrawText(x, y, "PITCH "+fmt2(f.controls.Axes.Pitch)+"  ROLL "+fmt2(f.controls.Axes.Roll), scale, hudText)
	y += line
	h.DrawText(x, y, "YAW "+fmt2(f.controls.Axes.Yaw), scale, hudText)
	y += line
	h.AddBar(x, y, panelWidth-2*x, 4, f.controls.PitchRamp, hudWarn)
	y += 8
	h.AddBar(x, y, panelWidth-2*x, 4, f.controls.RollRamp, hudWarn)
	y += line

	y += line
	h.DrawText(x, y, "CAM "+f.mode+"  ZOOM "+fmt2(f.camera.Zoom), scale, hudText)
	y += line
	h.DrawText(x, y, "POS "+itoa(int(f.snap.Position.X))+" "+itoa(int(f.snap.Position.Y))+" "+itoa(int(f.snap.Position.Z)), scale, hudText)
	y += line

	if f.debug.Active {
		y += line
		h.DrawText(x, y, "ROLL "+itoa(int(f.debug.RollDeg))+" YAW "+itoa(int(f.debug.YawDeg))+" PITCH "+itoa(int(f.debug.PitchDeg)), scale, hudWarn)
		y += line
		h.DrawText(x, y, "ARROWS Q E NUDGE  R RESET", scale, hudWarn)
	}
}

func itoa(v int) string { return strconv.FormatInt(int64(v), 10) }

// fmt2 formats with two decimals without going through fmt.
func fmt2(x float64) string { return strconv.FormatFloat(x, 'f', 2, 64) }

// 5x7 uppercase font; each row uses the low five bits.
var font5x7 = map[rune][7]uint8{
	' ': {0, 0, 0, 0, 0, 0, 0},
	'.': {0, 0, 0, 0, 0, 0, 0b00100},
	':': {0, 0, 0b00100, 0, 0b00100, 0, 0},
	'%': {0b10001, 0b00010, 0b00100, 0b01000, 0b10000, 0, 0},
	'-': {0, 0, 0, 0b11110, 0, 0, 0},
	'/': {0b00001, 0b00010, 0b00010, 0b00100, 0b01000, 0b01000, 0b10000},

	'0': {0b01110, 0b10001, 0b10011, 0b10101, 0b11001, 0b10001, 0b01110},
	'1': {0b00100, 0b01100, 0b00100, 0b00100, 0b00100, 0b00100, 0b01110},
	'2': {0b01110, 0b10001, 0b00001, 0b00010, 0b00100, 0b01000, 0b11111},
	'3': {0b11110, 0b00001, 0b00001, 0b01110, 0b00001, 0b00001, 0b11110},
	'4': {0b00010, 0b00110, 0b01010, 0b10010, 0b11111, 0b00010, 0b00010},
	'5': {0b11111, 0b10000, 0b11110, 0b00001, 0b00001, 0b10001, 0b01110},
	'6': {0b00110, 0b01000, 0b10000, 0b11110, 0b10001, 0b10001, 0b01110},
	'7': {0b11111, 0b00001, 0b00010, 0b00100, 0b01000, 0b01000, 0b01000},
	'8': {0b01110, 0b10001, 0b10001, 0b01110, 0b10001, 0b10001, 0b01110},
	'9': {0b01110, 0b10001, 0b10001, 0b01111, 0b00001, 0b00010, 0b01100},

	'A': {0b01110, 0b10001, 0b10001, 0b11111, 0b10001, 0b10001, 0b10001},
	'B': {0b11110, 0b10001, 0b10001, 0b11110, 0b10001, 0b10001, 0b11110},
	'C': {0b01110, 0b10001, 0b10000, 0b10000, 0b10000, 0b10001, 0b01110},
	'D': {0b11100, 0b10010, 0b10001, 0b10001, 0b10001, 0b10010, 0b11100},
	'E': {0b11111, 0b10000, 0b10000, 0b11110, 0b10000, 0b10000, 0b11111},
	'F': {0b11111, 0b10000, 0b10000, 0b11110, 0b10000, 0b10000, 0b10000},
	'G': {0b01110, 0b10001, 0b10000, 0b10111, 0b10001, 0b10001, 0b01110},
	'H': {0b10001, 0b10001, 0b10001, 0b11111, 0b10001, 0b10001, 0b10001},
	'I': {0b01110, 0b00100, 0b00100, 0b00100, 0b00100, 0b00100, 0b01110},
	'J': {0b00001, 0b00001, 0b00001, 0b00001, 0b10001, 0b10001, 0b01110},
	'K': {0b10001, 0b10010, 0b10100, 0b11000, 0b10100, 0b10010, 0b10001},
	'L': {0b10000, 0b10000, 0b10000, 0b10000, 0b10000, 0b10000, 0b11111},
	'M': {0b10001, 0b11011, 0b10101, 0b10101, 0b10001, 0b10001, 0b10001},
	'N': {0b10001, 0b11001, 0b10101, 0b10011, 0b10001, 0b10001, 0b10001},
	'O': {0b01110, 0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b01110},
	'P': {0b11110, 0b10001, 0b10001, 0b11110, 0b10000, 0b10000, 0b10000},
	'Q': {0b01110, 0b10001, 0b10001, 0b10001, 0b10101, 0b10010, 0b01101},
	'R': {0b11110, 0b10001, 0b10001, 0b11110, 0b10100, 0b10010, 0b10001},
	'S': {0b01111, 0b10000, 0b10000, 0b01110, 0b00001, 0b00001, 0b11110},
	'T': {0b11111, 0b00100, 0b00100, 0b00100, 0b00100, 0b00100, 0b00100},
	'U': {0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b01110},
	'V': {0b10001, 0b10001, 0b10001, 0b10001, 0b01010, 0b01010, 0b00100},
	'W': {0b10001, 0b10001, 0b10001, 0b10101, 0b10101, 0b11011, 0b10001},
	'X': {0b10001, 0b10001, 0b01010, 0b00100, 0b01010, 0b10001, 0b10001},
	'Y': {0b10001, 0b10001, 0b01010, 0b00100, 0b00100, 0b00100, 0b00100},
	'Z': {0b11111, 0b00001, 0b00010, 0b00100, 0b01000, 0b10000, 0b11111},
}
