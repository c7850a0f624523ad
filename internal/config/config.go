// Package config handles modeltool configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Hashlist HashlistConfig `yaml:"hashlist"`
	Export   ExportConfig   `yaml:"export"`
	Resave   ResaveConfig   `yaml:"save"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// HashlistConfig lists the files used to name hashed identifiers.
type HashlistConfig struct {
	Paths []string `yaml:"paths"` // One name per line
}

// ExportConfig holds glTF export settings.
type ExportConfig struct {
	Binary    bool   `yaml:"binary"`     // Write .glb instead of .gltf
	OutputDir string `yaml:"output_dir"` // Empty means next to the input
}

// ResaveConfig holds model writing settings.
type ResaveConfig struct {
	RebuildHashTable bool `yaml:"rebuild_hash_table"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Hashlist: HashlistConfig{
			Paths: []string{"hashlist.txt"},
		},
		Export: ExportConfig{
			Binary:    true,
			OutputDir: "",
		},
		Resave: ResaveConfig{
			RebuildHashTable: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
