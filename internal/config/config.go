// Package config loads settings from defaults, an optional file and
// LS_SPIRAL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/litescript/ls-spiral/internal/camera"
	"github.com/litescript/ls-spiral/internal/chart"
	"github.com/litescript/ls-spiral/internal/spiral"
)

// EnvPrefix is prepended to every environment override, with dots in the key
// replaced by underscores: LS_SPIRAL_CAMERA_DAMPING.
const EnvPrefix = "LS_SPIRAL"

var ErrInvalid = errors.New("invalid config")

// ServeConfig holds pose stream settings.
type ServeConfig struct {
	Addr      string `json:"addr" mapstructure:"addr"`
	FrameRate int    `json:"frameRate" mapstructure:"frameRate"`
}

// RenderConfig holds offline render settings.
type RenderConfig struct {
	Width       int `json:"width" mapstructure:"width"`
	Height      int `json:"height" mapstructure:"height"`
	Supersample int `json:"supersample" mapstructure:"supersample"`
}

// Config is the full application configuration.
type Config struct {
	LogLevel string        `json:"logLevel" mapstructure:"logLevel"`
	LogFile  string        `json:"logFile" mapstructure:"logFile"`
	Spiral   spiral.Params `json:"spiral" mapstructure:"spiral"`
	Camera   camera.Config `json:"camera" mapstructure:"camera"`
	Serve    ServeConfig   `json:"serve" mapstructure:"serve"`
	Render   RenderConfig  `json:"render" mapstructure:"render"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFile", "")

	sp := spiral.DefaultParams()
	v.SetDefault("spiral.layerCount", sp.LayerCount)
	v.SetDefault("spiral.pointsPerLayer", sp.PointsPerLayer)
	v.SetDefault("spiral.startRadius", sp.StartRadius)
	v.SetDefault("spiral.endRadius", sp.EndRadius)
	v.SetDefault("spiral.height", sp.Height)
	v.SetDefault("spiral.cameraDistance", sp.CameraDistance)
	v.SetDefault("spiral.cameraHeightOffset", sp.CameraHeightOffset)

	cam := camera.DefaultConfig()
	v.SetDefault("camera.layerSpeed", cam.LayerSpeed)
	v.SetDefault("camera.overviewSpeed", cam.OverviewSpeed)
	v.SetDefault("camera.ziplineSpeed", cam.ZiplineSpeed)
	v.SetDefault("camera.damping", cam.Damping)
	v.SetDefault("camera.attitudeStep", cam.AttitudeStep)
	v.SetDefault("camera.overviewDistance", cam.OverviewDistance)
	v.SetDefault("camera.overviewHeight", cam.OverviewHeight)
	v.SetDefault("camera.bodyDistance", cam.BodyDistance)
	v.SetDefault("camera.bodyHeightOffset", cam.BodyHeightOffset)
	v.SetDefault("camera.orbitSpeed", cam.OrbitSpeed)

	v.SetDefault("serve.addr", "127.0.0.1:8787")
	v.SetDefault("serve.frameRate", 60)

	v.SetDefault("render.width", 960)
	v.SetDefault("render.height", 720)
	v.SetDefault("render.supersample", 2)
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Load reads configuration. An empty path uses defaults and environment
// only; the file type follows the extension (json, yaml, toml).
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every setting that would stall or break the pipeline.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if err := c.Spiral.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	if c.Spiral.LayerCount != chart.HouseCount {
		bad("spiral.layerCount must be %d, got %d", chart.HouseCount, c.Spiral.LayerCount)
	}

	for _, f := range []struct {
		key string
		val float64
	}{
		{"camera.layerSpeed", c.Camera.LayerSpeed},
		{"camera.overviewSpeed", c.Camera.OverviewSpeed},
		{"camera.ziplineSpeed", c.Camera.ZiplineSpeed},
		{"camera.overviewDistance", c.Camera.OverviewDistance},
		{"camera.bodyDistance", c.Camera.BodyDistance},
		{"camera.orbitSpeed", c.Camera.OrbitSpeed},
	} {
		// Zero speed never finishes an animation.
		if !(f.val > 0) {
			bad("%s must be positive, got %v", f.key, f.val)
		}
	}
	for _, f := range []struct {
		key string
		val float64
	}{
		{"camera.damping", c.Camera.Damping},
		{"camera.attitudeStep", c.Camera.AttitudeStep},
	} {
		if !(f.val > 0 && f.val <= 1) {
			bad("%s must be in (0, 1], got %v", f.key, f.val)
		}
	}

	if c.Serve.FrameRate <= 0 {
		bad("serve.frameRate must be positive, got %d", c.Serve.FrameRate)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		bad("render size %dx%d must be positive", c.Render.Width, c.Render.Height)
	}
	if c.Render.Supersample < 1 || c.Render.Supersample > 4 {
		bad("render.supersample must be 1..4, got %d", c.Render.Supersample)
	}

	return errors.Join(errs...)
}
