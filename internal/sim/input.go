//go:build !test
// +build !test

package sim

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

var glfwKeys = map[glfw.Key]KeyCode{
	glfw.KeyW:          KeyW,
	glfw.KeyS:          KeyS,
	glfw.KeyA:          KeyA,
	glfw.KeyD:          KeyD,
	glfw.KeyQ:          KeyQ,
	glfw.KeyE:          KeyE,
	glfw.KeyR:          KeyR,
	glfw.KeyF:          KeyF,
	glfw.KeyUp:         KeyArrowUp,
	glfw.KeyDown:       KeyArrowDown,
	glfw.KeyLeft:       KeyArrowLeft,
	glfw.KeyRight:      KeyArrowRight,
	glfw.KeySpace:      KeySpace,
	glfw.KeyLeftShift:  KeyShiftLeft,
	glfw.Key1:          KeyDigit1,
	glfw.Key2:          KeyDigit2,
	glfw.Key3:          KeyDigit3,
	glfw.Key4:          KeyDigit4,
	glfw.Key5:          KeyDigit5,
	glfw.KeyEqual:      KeyEqual,
	glfw.KeyKPAdd:      KeyEqual,
	glfw.KeyMinus:      KeyMinus,
	glfw.KeyKPSubtract: KeyMinus,
	glfw.Key0:          KeyDigit0,
	glfw.KeyEnter:      KeyEnter,
}

const scrollZoomStep = 0.1

// InputHandler forwards window input to a Simulator.
type InputHandler struct {
	sim        *Simulator
	keyPressed map[glfw.Key]bool // window-level keys, consumed once
}

func NewInputHandler(s *Simulator) *InputHandler {
	return &InputHandler{
		sim:        s,
		keyPressed: make(map[glfw.Key]bool),
	}
}

func (i *InputHandler) SetupCallbacks(window *glfw.Window) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}
		pressed := action == glfw.Press
		if pressed {
			i.keyPressed[key] = true
		}
		if code, ok := glfwKeys[key]; ok {
			i.sim.HandleKey(code, pressed)
		}
	})

	window.SetScrollCallback(func(w *glfw.Window, xoff float64, yoff float64) {
		i.sim.Do(func(_ *Airplane, c *CameraController) {
			c.AdjustZoom(-yoff * scrollZoomStep)
		})
	})
}

// WasKeyPressed reports and clears a press of a key the simulator does not
// handle itself, such as F1 or Escape.
func (i *InputHandler) WasKeyPressed(key glfw.Key) bool {
	if i.keyPressed[key] {
		i.keyPressed[key] = false
		return true
	}
	return false
}
