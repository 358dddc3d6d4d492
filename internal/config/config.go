package config

import (
	"errors"
	"fmt"
	"time"

	"city-flight-simulator/internal/sim"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "flightsim.cfg.json"

type SimConfig struct {
	UPS              int
	MaxStepsPerFrame int
}

type CityConfig struct {
	LayoutFile string
}

type RecorderConfig struct {
	Enabled     bool
	Driver      string
	SqlitePath  string
	DSN         string
	SampleEvery int
}

type InfluxConfig struct {
	Enabled    bool
	URL        string
	Token      string
	Org        string
	Bucket     string
	BackupPath string
}

type GeoConfig struct {
	OriginLon float64
	OriginLat float64
}

type WindowConfig struct {
	Width          int
	Height         int
	Title          string
	TelemetryEvery time.Duration
}

// SetDefaults registers a default for every known key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./flightlogs")

	p := sim.DefaultPhysicsConfig()
	viper.SetDefault("physics.mass", p.Mass)
	viper.SetDefault("physics.maxThrust", p.MaxThrust)
	viper.SetDefault("physics.drag", p.Drag)
	viper.SetDefault("physics.gravity", p.Gravity)
	viper.SetDefault("physics.stallSpeed", p.StallSpeed)
	viper.SetDefault("physics.takeoffSpeed", p.TakeoffSpeed)
	viper.SetDefault("physics.maxSpeed", p.MaxSpeed)
	viper.SetDefault("physics.maxAngularVelocity.pitch", p.MaxAngular.Pitch)
	viper.SetDefault("physics.maxAngularVelocity.yaw", p.MaxAngular.Yaw)
	viper.SetDefault("physics.maxAngularVelocity.roll", p.MaxAngular.Roll)
	viper.SetDefault("physics.airDensity", p.AirDensity)
	viper.SetDefault("physics.wingArea", p.WingArea)
	viper.SetDefault("physics.liftCoefficient", p.LiftCoefficient)
	viper.SetDefault("physics.aoaGain", p.AoAGain)
	viper.SetDefault("physics.groundClearance", p.GroundClearance)
	viper.SetDefault("physics.crashSpeed", p.CrashSpeed)
	viper.SetDefault("physics.groundFriction", p.GroundFriction)
	viper.SetDefault("physics.initialPosition.x", p.InitialPosition.X)
	viper.SetDefault("physics.initialPosition.y", p.InitialPosition.Y)
	viper.SetDefault("physics.initialPosition.z", p.InitialPosition.Z)

	c := sim.DefaultControllerConfig()
	viper.SetDefault("controls.throttleStep", c.ThrottleStep)
	viper.SetDefault("controls.pitchStep", c.PitchStep)
	viper.SetDefault("controls.yawStep", c.YawStep)
	viper.SetDefault("controls.rollStep", c.RollStep)
	viper.SetDefault("controls.rampUpTime", c.RampUpTime)
	viper.SetDefault("controls.maxPitch", c.MaxPitch)
	viper.SetDefault("controls.maxRoll", c.MaxRoll)
	viper.SetDefault("controls.pitchReturn", c.PitchReturn)
	viper.SetDefault("controls.yawReturn", c.YawReturn)
	viper.SetDefault("controls.rollReturn", c.RollReturn)
	viper.SetDefault("controls.idleThrottle", c.IdleThrottle)
	viper.SetDefault("controls.boostFactor", c.BoostFactor)
	viper.SetDefault("controls.groundBrake", c.GroundBrake)
	viper.SetDefault("controls.airBrake", c.AirBrake)

	cam := sim.DefaultCameraConfig()
	viper.SetDefault("camera.followDistance", cam.FollowDistance)
	viper.SetDefault("camera.followHeight", cam.FollowHeight)
	viper.SetDefault("camera.lookAhead", cam.LookAhead)
	viper.SetDefault("camera.smoothingFactor", cam.SmoothingFactor)
	viper.SetDefault("camera.verticalSmoothing", cam.VerticalSmoothing)
	viper.SetDefault("camera.autoSwitchDistance", cam.AutoSwitchDistance)
	viper.SetDefault("camera.minHeight", cam.MinHeight)
	viper.SetDefault("camera.maxHeight", cam.MaxHeight)
	viper.SetDefault("camera.zoomMin", cam.ZoomMin)
	viper.SetDefault("camera.zoomMax", cam.ZoomMax)
	viper.SetDefault("camera.collisionAvoidanceDistance", cam.CollisionAvoidanceDistance)
	viper.SetDefault("camera.orbitRadius", cam.OrbitRadius)
	viper.SetDefault("camera.orbitSpeed", cam.OrbitSpeed)

	viper.SetDefault("sim.ups", 120)
	viper.SetDefault("sim.maxStepsPerFrame", 5)

	viper.SetDefault("city.layoutFile", "")

	viper.SetDefault("recorder.enabled", false)
	viper.SetDefault("recorder.driver", "sqlite")
	viper.SetDefault("recorder.sqlitePath", "./flights.db")
	viper.SetDefault("recorder.dsn", "host=localhost port=5432 user=postgres password=postgres dbname=flightsim sslmode=disable")
	viper.SetDefault("recorder.sampleEvery", 12)

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.url", "http://localhost:8086")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "flightsim")
	viper.SetDefault("influx.bucket", "flight_data")
	viper.SetDefault("influx.backupPath", "./flight_metrics.lp.gz")

	// Tokyo Station, the demo city sits on top of it
	viper.SetDefault("geo.originLon", 139.7671)
	viper.SetDefault("geo.originLat", 35.6812)

	viper.SetDefault("window.width", 1280)
	viper.SetDefault("window.height", 720)
	viper.SetDefault("window.title", "City Flight Simulator")
	viper.SetDefault("window.telemetryEvery", "2s")
}

// Load sets defaults and reads FileName from configDir. A missing file is
// fine and leaves the defaults in place.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

func vec(prefix string) sim.Vec3 {
	return sim.Vec3{
		X: viper.GetFloat64(prefix + ".x"),
		Y: viper.GetFloat64(prefix + ".y"),
		Z: viper.GetFloat64(prefix + ".z"),
	}
}

func Physics() sim.PhysicsConfig {
	return sim.PhysicsConfig{
		Mass:         viper.GetFloat64("physics.mass"),
		MaxThrust:    viper.GetFloat64("physics.maxThrust"),
		Drag:         viper.GetFloat64("physics.drag"),
		Gravity:      viper.GetFloat64("physics.gravity"),
		StallSpeed:   viper.GetFloat64("physics.stallSpeed"),
		TakeoffSpeed: viper.GetFloat64("physics.takeoffSpeed"),
		MaxSpeed:     viper.GetFloat64("physics.maxSpeed"),
		MaxAngular: sim.AngularRates{
			Pitch: viper.GetFloat64("physics.maxAngularVelocity.pitch"),
			Yaw:   viper.GetFloat64("physics.maxAngularVelocity.yaw"),
			Roll:  viper.GetFloat64("physics.maxAngularVelocity.roll"),
		},
		AirDensity:      viper.GetFloat64("physics.airDensity"),
		WingArea:        viper.GetFloat64("physics.wingArea"),
		LiftCoefficient: viper.GetFloat64("physics.liftCoefficient"),
		AoAGain:         viper.GetFloat64("physics.aoaGain"),
		GroundClearance: viper.GetFloat64("physics.groundClearance"),
		CrashSpeed:      viper.GetFloat64("physics.crashSpeed"),
		GroundFriction:  viper.GetFloat64("physics.groundFriction"),
		InitialPosition: vec("physics.initialPosition"),
	}
}

// Controls keeps the reset position fixed; it is not configurable.
func Controls() sim.ControllerConfig {
	c := sim.DefaultControllerConfig()
	c.ThrottleStep = viper.GetFloat64("controls.throttleStep")
	c.PitchStep = viper.GetFloat64("controls.pitchStep")
	c.YawStep = viper.GetFloat64("controls.yawStep")
	c.RollStep = viper.GetFloat64("controls.rollStep")
	c.RampUpTime = viper.GetFloat64("controls.rampUpTime")
	c.MaxPitch = viper.GetFloat64("controls.maxPitch")
	c.MaxRoll = viper.GetFloat64("controls.maxRoll")
	c.PitchReturn = viper.GetFloat64("controls.pitchReturn")
	c.YawReturn = viper.GetFloat64("controls.yawReturn")
	c.RollReturn = viper.GetFloat64("controls.rollReturn")
	c.IdleThrottle = viper.GetFloat64("controls.idleThrottle")
	c.BoostFactor = viper.GetFloat64("controls.boostFactor")
	c.GroundBrake = viper.GetFloat64("controls.groundBrake")
	c.AirBrake = viper.GetFloat64("controls.airBrake")
	return c
}

func Camera() sim.CameraConfig {
	c := sim.DefaultCameraConfig()
	c.FollowDistance = viper.GetFloat64("camera.followDistance")
	c.FollowHeight = viper.GetFloat64("camera.followHeight")
	c.LookAhead = viper.GetFloat64("camera.lookAhead")
	c.SmoothingFactor = viper.GetFloat64("camera.smoothingFactor")
	c.VerticalSmoothing = viper.GetFloat64("camera.verticalSmoothing")
	c.AutoSwitchDistance = viper.GetFloat64("camera.autoSwitchDistance")
	c.MinHeight = viper.GetFloat64("camera.minHeight")
	c.MaxHeight = viper.GetFloat64("camera.maxHeight")
	c.ZoomMin = viper.GetFloat64("camera.zoomMin")
	c.ZoomMax = viper.GetFloat64("camera.zoomMax")
	c.CollisionAvoidanceDistance = viper.GetFloat64("camera.collisionAvoidanceDistance")
	c.OrbitRadius = viper.GetFloat64("camera.orbitRadius")
	c.OrbitSpeed = viper.GetFloat64("camera.orbitSpeed")
	return c
}

func Sim() SimConfig {
	return SimConfig{
		UPS:              viper.GetInt("sim.ups"),
		MaxStepsPerFrame: viper.GetInt("sim.maxStepsPerFrame"),
	}
}

func City() CityConfig {
	return CityConfig{LayoutFile: viper.GetString("city.layoutFile")}
}

func Recorder() RecorderConfig {
	return RecorderConfig{
		Enabled:     viper.GetBool("recorder.enabled"),
		Driver:      viper.GetString("recorder.driver"),
		SqlitePath:  viper.GetString("recorder.sqlitePath"),
		DSN:         viper.GetString("recorder.dsn"),
		SampleEvery: viper.GetInt("recorder.sampleEvery"),
	}
}

func Influx() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		URL:        viper.GetString("influx.url"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

func Geo() GeoConfig {
	return GeoConfig{
		OriginLon: viper.GetFloat64("geo.originLon"),
		OriginLat: viper.GetFloat64("geo.originLat"),
	}
}

func Window() WindowConfig {
	return WindowConfig{
		Width:          viper.GetInt("window.width"),
		Height:         viper.GetInt("window.height"),
		Title:          viper.GetString("window.title"),
		TelemetryEvery: viper.GetDuration("window.telemetryEvery"),
	}
}

// SimOptions assembles simulator options from the loaded config. The
// buildings and logger are supplied by the caller.
func SimOptions() sim.Options {
	opts := sim.DefaultOptions()
	opts.Physics = Physics()
	opts.Controller = Controls()
	opts.Camera = Camera()
	s := Sim()
	opts.UPS = s.UPS
	opts.MaxStepsPerFrame = s.MaxStepsPerFrame
	opts.SampleEvery = Recorder().SampleEvery
	return opts
}
