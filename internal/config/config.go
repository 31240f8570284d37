// Package config handles application configuration loading and management.
package config

import "math"

// Config holds all application settings.
type Config struct {
	Graphics    GraphicsConfig    `yaml:"graphics"`
	Data        DataConfig        `yaml:"data"`
	Interaction InteractionConfig `yaml:"interaction"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// DataConfig holds model library paths.
type DataConfig struct {
	ModelsDir string `yaml:"models_dir"` // Directory holding rig documents
	Catalog   string `yaml:"catalog"`    // Catalog file name inside ModelsDir
}

// InteractionConfig holds controller interaction tuning.
type InteractionConfig struct {
	BoostFactor      float32 `yaml:"boost_factor"`       // Rotation gain applied to controller swings
	PlaceDistance    float32 `yaml:"place_distance"`     // Meters in front of the head at placement
	PlaceDrop        float32 `yaml:"place_drop"`         // Meters below head height at placement
	RotationLimitRad float32 `yaml:"rotation_limit_rad"` // Per-axis joint rotation clamp
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Data: DataConfig{
			ModelsDir: "models",
			Catalog:   "catalog.yaml",
		},
		Interaction: InteractionConfig{
			BoostFactor:      6.5,
			PlaceDistance:    1.0,
			PlaceDrop:        0.35,
			RotationLimitRad: 0.95 * math.Pi,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
