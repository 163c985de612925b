package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the typed snapshot of the loaded configuration, validated
// after unmarshalling.
type Config struct {
	LogLevel string `json:"logLevel" mapstructure:"logLevel" validate:"oneof=debug info warn error"`
	LogsDir  string `json:"logsDir" mapstructure:"logsDir" validate:"required"`

	Dataset  DatasetConfig  `json:"dataset" mapstructure:"dataset"`
	Playback PlaybackConfig `json:"playback" mapstructure:"playback"`
	Palette  PaletteConfig  `json:"palette" mapstructure:"palette"`
	Storage  StorageConfig  `json:"storage" mapstructure:"storage"`
	DB       DBConfig       `json:"db" mapstructure:"db"`
	Influx   InfluxConfig   `json:"influx" mapstructure:"influx"`
	Otel     OtelConfig     `json:"otel" mapstructure:"otel"`
}

// DatasetConfig points at the trajectory dataset to replay.
type DatasetConfig struct {
	Path        string `json:"path" mapstructure:"path" validate:"required"`
	SessionName string `json:"sessionName" mapstructure:"sessionName"`
}

// PlaybackConfig tunes the virtual clock.
type PlaybackConfig struct {
	BaseRatio     float64 `json:"baseRatio" mapstructure:"baseRatio" validate:"gt=0"`
	Speed         float64 `json:"speed" mapstructure:"speed" validate:"gt=0"`
	TickMs        int     `json:"tickMs" mapstructure:"tickMs" validate:"gt=0"`
	DimmedOpacity float64 `json:"dimmedOpacity" mapstructure:"dimmedOpacity" validate:"gt=0,lte=1"`
}

// PaletteConfig tunes category color assignment.
type PaletteConfig struct {
	HomeCategory  string `json:"homeCategory" mapstructure:"homeCategory"`
	FallbackColor string `json:"fallbackColor" mapstructure:"fallbackColor" validate:"required"`
}

// MemoryConfig holds in-memory/JSON storage backend settings.
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// StorageConfig selects and tunes snapshot sinks.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type" validate:"oneof=memory database both none"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
}

// DBConfig holds database archive settings.
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// InfluxConfig holds playback metrics settings.
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
}

// OtelConfig holds OpenTelemetry export settings.
type OtelConfig struct {
	Enabled      bool   `json:"enabled" mapstructure:"enabled"`
	ServiceName  string `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout string `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool   `json:"insecure" mapstructure:"insecure"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./replaylogs")

	viper.SetDefault("dataset.path", "./dataset.json")
	viper.SetDefault("dataset.sessionName", "replay")

	viper.SetDefault("playback.baseRatio", 60.0)
	viper.SetDefault("playback.speed", 1.0)
	viper.SetDefault("playback.tickMs", 250)
	viper.SetDefault("playback.dimmedOpacity", 0.25)

	viper.SetDefault("palette.homeCategory", "")
	viper.SetDefault("palette.fallbackColor", "#808080")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./sessions")
	viper.SetDefault("storage.memory.compressOutput", true)

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "replay")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "replay-metrics")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "vessel-replay")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetConfigName("replay.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// Snapshot unmarshals the loaded configuration into a validated
// Config. Call after Load.
func Snapshot() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %v", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
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
