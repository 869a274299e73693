package dash

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"servofw/host/monitor"
)

// Config holds all dashboard configuration.
type Config struct {
	// Serial port carrying the drive's debug stream.
	Serial SerialConfig `yaml:"serial" json:"serial"`

	// CSV logging of decoded samples.
	Logging monitor.LoggerConfig `yaml:"logging" json:"logging"`

	Server ServerConfig `yaml:"server" json:"server"`
}

type SerialConfig struct {
	PortPath string `yaml:"port_path" json:"portPath"`
	BaudRate int    `yaml:"baud_rate" json:"baudRate"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr" json:"listenAddr"`

	// BroadcastHz limits the websocket frame rate; the debug stream
	// itself arrives at the full control rate.
	BroadcastHz int `yaml:"broadcast_hz" json:"broadcastHz"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Serial: SerialConfig{
			PortPath: "/dev/ttyACM0",
			BaudRate: 3000000,
		},
		Logging: monitor.LoggerConfig{
			Path:       "servofw-logs",
			IntervalMs: 10,
		},
		Server: ServerConfig{
			ListenAddr:  ":8080",
			BroadcastHz: 50,
		},
	}
}

// LoadConfig reads config from a YAML file, falling back to defaults
// if the file is missing or malformed.
func LoadConfig(path string) *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[config] no config at %s, using defaults", path)
		return cfg
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Printf("[config] error parsing %s: %v, using defaults", path, err)
		return DefaultConfig()
	}
	log.Printf("[config] loaded from %s", path)
	return cfg
}
