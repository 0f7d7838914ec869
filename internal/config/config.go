package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// FlavorConfig holds the flavor-text service parameters.
type FlavorConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
	// QueueSize bounds pending requests; overflow is dropped silently.
	QueueSize int `yaml:"queue_size"`
}

// Simulation holds all configuration for the simulation server.
type Simulation struct {
	// LogLevel: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// TickInterval is the simulation step size.
	TickInterval time.Duration `yaml:"tick_interval"`

	// DespawnRadius leashes monsters to their spawn anchor, in tiles.
	// 0 disables the leash.
	DespawnRadius int32 `yaml:"despawn_radius"`

	// RandSeed seeds the behavioral RNG; 0 picks a time-based seed.
	RandSeed uint64 `yaml:"rand_seed"`

	// MapWidth and MapHeight size the generated arena, in tiles.
	MapWidth  int32 `yaml:"map_width"`
	MapHeight int32 `yaml:"map_height"`

	Database DatabaseConfig `yaml:"database"`
	Flavor   FlavorConfig   `yaml:"flavor"`
}

// DefaultSimulation returns Simulation config with sensible defaults.
func DefaultSimulation() Simulation {
	return Simulation{
		LogLevel:      "info",
		TickInterval:  500 * time.Millisecond,
		DespawnRadius: 50,
		MapWidth:      128,
		MapHeight:     128,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "mobsim",
			Password: "mobsim",
			DBName:   "mobsim",
			SSLMode:  "disable",
		},
		Flavor: FlavorConfig{
			Enabled:   false,
			Endpoint:  "http://localhost:11434/api/generate",
			Model:     "llama3.2",
			Timeout:   10 * time.Second,
			QueueSize: 64,
		},
	}
}

// LoadSimulation loads simulation config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadSimulation(path string) (Simulation, error) {
	cfg := DefaultSimulation()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
