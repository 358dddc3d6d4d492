//go:build !test
// +build !test

package sim

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rs/zerolog"
)

// WindowOptions carries what the frame loop needs besides the simulator.
type WindowOptions struct {
	// Colors holds one 0xRRGGBB color per building, in Buildings() order.
	Colors []uint32
	// TelemetryEvery is how often the status line is printed. Zero
	// disables it.
	TelemetryEvery time.Duration
	Logger         zerolog.Logger
}

const (
	fieldOfView = 75.0
	nearPlane   = 0.1
	farPlane    = 1000.0
)

// RunWindow drives the simulator from the window's frame loop: input, fixed
// physics steps, then an interpolated render. It returns when the window
// is closed or Escape is pressed.
func RunWindow(window *glfw.Window, s *Simulator, opts WindowOptions) {
	input := NewInputHandler(s)
	input.SetupCallbacks(window)

	renderer := NewRenderer()
	hud := NewHUD()
	hudVisible := true
	buildings := s.Buildings()

	printControls()

	fps := 0.0
	telemetryTimer := time.Duration(0)
	prev := time.Now()

	for !window.ShouldClose() {
		now := time.Now()
		frame := now.Sub(prev)
		prev = now

		if dt := frame.Seconds(); dt > 0 {
			fps = fps*0.9 + (1.0/dt)*0.1
		}

		if input.WasKeyPressed(glfw.KeyEscape) {
			window.SetShouldClose(true)
		}
		if input.WasKeyPressed(glfw.KeyF1) {
			hudVisible = !hudVisible
		}

		alpha := s.Advance(frame)

		width, height := window.GetFramebufferSize()
		renderScene(renderer, s, buildings, opts.Colors, width, height, alpha)
		if hudVisible {
			hud.Begin(width, height)
			hud.DrawFlightPanel(collectHUDFrame(s, fps))
			hud.Flush()
		}

		if opts.TelemetryEvery > 0 {
			telemetryTimer += frame
			if telemetryTimer >= opts.TelemetryEvery {
				fmt.Printf("\r\033[K%s", s.Telemetry())
				telemetryTimer = 0
			}
		}

		window.SwapBuffers()
		glfw.PollEvents()
	}
	fmt.Println()
	opts.Logger.Info().Uint64("ticks", s.Ticks()).Msg("window closed")
}

func renderScene(r *Renderer, s *Simulator, buildings []AABB, colors []uint32, width, height int, alpha float64) {
	gl.ClearColor(0.53, 0.81, 0.92, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Viewport(0, 0, int32(width), int32(height))

	pose := s.CameraPose()
	aspect := 1.0
	if height > 0 {
		aspect = float64(width) / float64(height)
	}
	projection := PerspectiveMat4(fieldOfView, aspect, nearPlane, farPlane)
	view := LookAtMat4(pose.Position, pose.LookAt, pose.Up)

	r.SetCamera(pose.Position)

	// Ground follows the camera so it appears infinite
	ground := TranslationMat4(Vec3{X: pose.Position.X, Y: 0, Z: pose.Position.Z})
	r.SetMatrices(ground, view, projection)
	r.RenderGround()

	for i, b := range buildings {
		color := uint32(0x808080)
		if i < len(colors) {
			color = colors[i]
		}
		r.SetMatrices(BoxModel(b), view, projection)
		r.RenderBox(color)
	}

	r.SetMatrices(s.AirplaneModel(alpha), view, projection)
	r.RenderAirplane()
}

func collectHUDFrame(s *Simulator, fps float64) hudFrame {
	return hudFrame{
		snap:     s.Snapshot(),
		controls: s.Controls(),
		camera:   s.CameraInfo(),
		mode:     s.CameraMode(),
		debug:    s.DebugInfo(),
		started:  s.Started(),
		fps:      fps,
	}
}

func printControls() {
	fmt.Println("=== CITY FLIGHT SIMULATOR ===")
	fmt.Println("  ENTER - Start flight")
	fmt.Println()
	fmt.Println("FLIGHT CONTROLS:")
	fmt.Println("  W/S - Throttle up/down")
	fmt.Println("  A/D - Yaw left/right")
	fmt.Println("  Up/Down - Pitch down/up")
	fmt.Println("  Left/Right - Roll left/right")
	fmt.Println("  Space - Brake   Shift - Boost   R - Reset")
	fmt.Println()
	fmt.Println("CAMERA:")
	fmt.Println("  1 Chase  2 Cockpit  3 Orbit  4 Free  5 Dynamic")
	fmt.Println("  +/- or scroll - Zoom   0 - Reset zoom")
	fmt.Println()
	fmt.Println("  F - Debug mode   F1 - HUD   ESC - Quit")
	fmt.Println()
}
