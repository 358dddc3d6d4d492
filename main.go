//go:build !test
// +build !test

package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"city-flight-simulator/internal/app"
	"city-flight-simulator/internal/config"
	"city-flight-simulator/internal/sim"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configDir := flag.String("config", ".", "Directory holding flightsim.cfg.json")
	record := flag.Bool("record", false, "Record the flight regardless of config")
	flag.Parse()

	a, err := app.New(app.Options{ConfigDir: *configDir, Name: "flightsim", Console: os.Stdout, Record: *record})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to start:", err)
		os.Exit(1)
	}
	log := a.Log
	log.Info().Msg("City Flight Simulator starting")

	if err := glfw.Init(); err != nil {
		log.Error().Err(err).Msg("Failed to initialize GLFW")
		_ = a.Close()
		os.Exit(1)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	wc := config.Window()
	window, err := glfw.CreateWindow(wc.Width, wc.Height, wc.Title, nil, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create window")
		_ = a.Close()
		return
	}

	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		log.Error().Err(err).Msg("Failed to initialize OpenGL")
		_ = a.Close()
		return
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.CULL_FACE)

	log.Info().
		Str("gl", gl.GoStr(gl.GetString(gl.VERSION))).
		Str("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))).
		Msg("OpenGL initialized")

	sim.RunWindow(window, a.Sim, sim.WindowOptions{
		Colors:         a.City.Colors(),
		TelemetryEvery: wc.TelemetryEvery,
		Logger:         log,
	})

	fmt.Println(a.Summary())
	if err := a.Close(); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
